package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Estimate outcomes
const (
	estimateOutcomeResolved = "resolved"
	estimateOutcomeStale    = "stale"
	estimateOutcomeFailed   = "failed"
	estimateOutcomeRejected = "rejected"
)

var (
	// Committed notifications partitioned by type and selection method
	notificationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications committed to the history",
		},
		[]string{"type", "selection_method"},
	)

	// Audience estimates partitioned by selection method and outcome
	audienceEstimatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audience_estimates_total",
			Help: "Total number of audience count estimates",
		},
		[]string{"selection_method", "outcome"},
	)

	audienceEstimateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audience_estimate_duration_seconds",
			Help:    "Audience estimate latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"selection_method"},
	)

	draftSessionsOpenedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draft_sessions_opened_total",
			Help: "Total number of draft sessions opened",
		},
	)

	notificationsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_expired_total",
			Help: "Total number of notifications deactivated after expiry",
		},
	)
)
