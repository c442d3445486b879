package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(redemptionsTotal) }

var redemptionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "raffle_redemptions_total",
		Help: "Registration attempts by outcome.",
	},
	[]string{"outcome"}, // success | invalid_code | duplicate_claim | validation | closed | rate_limited | error
)

func IncRedemption(outcome string) {
	redemptionsTotal.WithLabelValues(norm(outcome)).Inc()
}
