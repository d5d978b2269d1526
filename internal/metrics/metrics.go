package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ConversationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_conversations_created_total",
			Help: "Conversations created.",
		},
	)

	ParticipantChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_participant_changes_total",
			Help: "Participant additions and removals.",
		},
		[]string{"change"},
	)

	MessageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_message_operations_total",
			Help: "Messages sent, edited and deleted.",
		},
		[]string{"op"},
	)

	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_notification_failures_total",
			Help: "Post-commit notifications that could not be delivered.",
		},
		[]string{"event_type"},
	)

	WebSocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_websocket_connections",
			Help: "Currently registered websocket connections.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		ConversationsCreated,
		ParticipantChanges,
		MessageOperations,
		NotificationFailures,
		WebSocketConnections,
	)
}
