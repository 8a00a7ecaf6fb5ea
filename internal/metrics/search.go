package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and indexing Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "figdex",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by shape and answering backend",
		},
		[]string{"shape", "backend"}, // backend: "managed" / "fallback" / "none"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "figdex",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, fallback included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"shape"},
	)

	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "figdex",
			Name:      "search_fallbacks_total",
			Help:      "Managed-index failures answered by the fallback path",
		},
		[]string{"shape"},
	)

	IndexOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "figdex",
			Name:      "index_operations_total",
			Help:      "Search document index operations",
		},
		[]string{"op", "status"}, // op: reindex / unindex / reindex_batch; status: ok / error
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(IndexOperationsTotal)
	searchMetricsRegistered = true
}
