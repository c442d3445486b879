package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(codesIssuedTotal, codeCollisionsTotal, codeLengthWidenedTotal, codesPurgedTotal, issueBatchesTotal)
}

var (
	codesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "raffle_codes_issued_total",
		Help: "Codes persisted by the issuer.",
	})

	codeCollisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_code_collisions_total",
			Help: "Random draws rejected because the value was already taken.",
		},
		[]string{"where"}, // batch | store | insert
	)

	codeLengthWidenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "raffle_code_length_widened_total",
		Help: "Times the issuer fell back to a longer code after exhausting its attempts.",
	})

	codesPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "raffle_codes_purged_total",
		Help: "Codes removed by the bulk delete operation.",
	})

	issueBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_issue_batches_total",
			Help: "Issuer batch runs by result.",
		},
		[]string{"result"}, // ok | failed | rejected
	)
)

func IncCodesIssued()               { codesIssuedTotal.Inc() }
func IncCodeCollision(where string) { codeCollisionsTotal.WithLabelValues(norm(where)).Inc() }
func IncCodeLengthWidened()         { codeLengthWidenedTotal.Inc() }
func AddCodesPurged(n int64)        { codesPurgedTotal.Add(float64(n)) }
func IncIssueBatch(result string)   { issueBatchesTotal.WithLabelValues(norm(result)).Inc() }
