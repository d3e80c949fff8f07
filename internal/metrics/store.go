package metrics

import "github.com/prometheus/client_golang/prometheus"

// Document store Prometheus metrics.
var (
	StoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medstore",
			Name:      "store_requests_total",
			Help:      "Total number of document store calls",
		},
		[]string{"op", "status"}, // status: ok | network | server | unknown
	)

	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medstore",
			Name:      "store_request_duration_seconds",
			Help:      "Document store call duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	PartialWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medstore",
			Name:      "partial_writes_total",
			Help:      "Logical writes that failed after the document was created",
		},
		[]string{"kind", "stage"},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers Prometheus store metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreRequestsTotal)
	prometheus.MustRegister(StoreRequestDuration)
	prometheus.MustRegister(PartialWritesTotal)
	storeMetricsRegistered = true
}
