package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminLoginTotal, adminActionTotal) }

var (
	adminLoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_login_total",
			Help: "Admin sign-in attempts.",
		},
		[]string{"status"}, // 'ok', 'denied'
	)

	adminActionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_action_total",
			Help: "Admin console actions.",
		},
		[]string{"action", "status"},
	)
)

func IncAdminLogin(status string) {
	adminLoginTotal.WithLabelValues(norm(status)).Inc()
}

func IncAdminAction(action, status string) {
	adminActionTotal.WithLabelValues(norm(action), norm(status)).Inc()
}
