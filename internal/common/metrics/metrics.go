// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of movie requests processed, by outcome",
		},
		[]string{"outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "recommend_request_duration_seconds",
			Help: "Duration of a full pipeline run in seconds",
		},
		[]string{"outcome"},
	)

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of catalog HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	CatalogLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Latency of catalog HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CatalogCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_results_total",
			Help: "Catalog cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	CatalogLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookup_failures_total",
			Help: "Identifier lookups whose fetch failed and resolved to nothing",
		},
		[]string{"lookup"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Catalog circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	SessionThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_inputs_throttled_total",
			Help: "Chat inputs dropped because they arrived inside the throttle window",
		},
	)

	SessionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_retries_total",
			Help: "Pipeline re-runs triggered by the session retry policy",
		},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
