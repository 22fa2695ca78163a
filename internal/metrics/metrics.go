// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "A histogram of request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// AuthAttempts counts register and login outcomes.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_auth_attempts_total",
			Help: "Register and login attempts by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	PhotoOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_photo_operations_total",
			Help: "Completed photo replacements and removals.",
		},
		[]string{"operation"},
	)

	// PhotoCleanupFailures counts best-effort deletes that left an orphaned file.
	PhotoCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_photo_cleanup_failures_total",
			Help: "Photo files that could not be deleted after being detached from a user.",
		},
	)
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
