package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the settlement-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oxmart",
			Subsystem: "settlement",
			Name:      "orders_total",
			Help:      "Total number of settlement attempts.",
		},
		[]string{"kind", "result"},
	)

	settlementAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "oxmart",
			Subsystem: "settlement",
			Name:      "gross_amount",
			Help:      "Gross amount of settled orders in token base units.",
			Buckets:   prometheus.ExponentialBuckets(1e4, 10, 8), // 1e4 to 1e11
		},
	)

	adminOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oxmart",
			Subsystem: "admin",
			Name:      "operations_total",
			Help:      "Total number of administrative operations.",
		},
		[]string{"op", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oxmart",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	Registry.MustRegister(
		settlements,
		settlementAmount,
		adminOps,
		httpRequests,
	)
}

// ObserveSettlement records a settlement attempt.
// kind is "single" or "batch"; result is "ok" or the error class.
func ObserveSettlement(kind, result string, grossAmount uint64) {
	settlements.WithLabelValues(kind, result).Inc()
	if result == "ok" {
		settlementAmount.Observe(float64(grossAmount))
	}
}

// ObserveAdminOp records an administrative operation.
func ObserveAdminOp(op, result string) {
	adminOps.WithLabelValues(op, result).Inc()
}

// ObserveHTTPRequest records a handled HTTP request.
func ObserveHTTPRequest(method, path, status string) {
	httpRequests.WithLabelValues(method, path, status).Inc()
}
