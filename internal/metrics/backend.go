package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backend and pipeline Prometheus metrics.
var (
	BackendAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunbird",
			Name:      "backend_attempts_total",
			Help:      "Total number of outbound backend attempts, including retries",
		},
		[]string{"endpoint", "outcome"}, // outcome: success, retryable, client_error, network_error
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunbird",
			Name:      "backend_requests_total",
			Help:      "Total number of backend calls after retries",
		},
		[]string{"endpoint", "status"}, // status: success, error
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sunbird",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend call duration in seconds, retries and backoff included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunbird",
			Name:      "pipeline_runs_total",
			Help:      "Operation invocations by final state",
		},
		[]string{"operation", "source", "stage", "kind"}, // stage: done or the stage that failed
	)

	ReadCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunbird",
			Name:      "read_cache_total",
			Help:      "Content read cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers backend, pipeline and cache metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendAttemptsTotal)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(ReadCacheTotal)
	backendMetricsRegistered = true
}
