package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "milestone_transition_duration_seconds",
			Help:    "Milestone transition duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"action", "outcome"},
	)

	TransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestone_transition_count",
			Help: "Total number of milestone transitions attempted",
		},
		[]string{"action", "outcome"}, // outcome: success, unauthorized, invalid_transition, validation_error, conflict, not_found, error
	)

	SummaryCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispute_summary_call_latency_ms",
			Help:    "Text-generation call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"tier", "status"},
	)

	SummaryEnrichmentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispute_summary_enrichment_count",
			Help: "Total number of dispute summary enrichment attempts",
		},
		[]string{"tier", "status"}, // status: written, skipped_free, skipped_stale, failed
	)

	SaveConflictCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "project_save_conflict_count",
			Help: "Total number of optimistic-lock conflicts on project save",
		},
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries slower than the slow-query threshold",
		},
	)

	SlowQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of queries that crossed the slow-query threshold",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

// RecordTransition records one transition attempt.
func RecordTransition(action, outcome string, duration time.Duration) {
	TransitionCount.WithLabelValues(action, outcome).Inc()
	TransitionDuration.WithLabelValues(action, outcome).Observe(duration.Seconds())
}

// RecordSummaryCall records one text-generation call.
func RecordSummaryCall(tier, status string, duration time.Duration) {
	SummaryCallLatency.WithLabelValues(tier, status).Observe(float64(duration.Milliseconds()))
}

// IncrementEnrichment bumps the enrichment counter.
func IncrementEnrichment(tier, status string) {
	SummaryEnrichmentCount.WithLabelValues(tier, status).Inc()
}

// IncrementSlowQuery records one slow query.
func IncrementSlowQuery(duration time.Duration) {
	SlowQueryCount.Inc()
	SlowQueryDuration.Observe(duration.Seconds())
}

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
