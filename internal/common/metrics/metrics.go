// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_turns_completed_total",
			Help: "Total number of chat turns completed",
		},
		[]string{"persona"},
	)

	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_turns_failed_total",
			Help: "Total number of chat turns that failed",
		},
		[]string{"persona", "error_code"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "concierge_turn_duration_seconds",
			Help: "Duration of one full chat turn in seconds",
		},
		[]string{"persona"},
	)

	PayloadsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_payloads_extracted_total",
			Help: "Total number of structured payloads extracted from assistant replies",
		},
		[]string{"persona"},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_webhook_deliveries_total",
			Help: "Total number of webhook submissions by outcome",
		},
		[]string{"endpoint", "status"},
	)

	LookupQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_lookup_queries_total",
			Help: "Total number of recent-print-jobs lookups by outcome",
		},
		[]string{"result"},
	)

	SessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_sessions_created_total",
			Help: "Total number of chat sessions created",
		},
		[]string{"persona", "mode"},
	)
)
