// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motor_match_queries_total",
			Help: "Total number of matcher queries by outcome",
		},
		[]string{"outcome"},
	)

	MatchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "motor_match_results_returned",
			Help:    "Number of suggestions returned per matcher query",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 25, 50},
		},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "motor_match_duration_seconds",
			Help:    "Duration of a matcher query in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	CatalogEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "motor_catalog_entries",
			Help: "Number of entries in the loaded catalog",
		},
		[]string{"source"},
	)

	CatalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motor_catalog_cache_lookups_total",
			Help: "Catalog snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"route", "method"},
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
