package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinkAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_link_attempts_total",
			Help: "Total number of mailbox link callbacks by outcome",
		},
		[]string{"outcome"}, // outcome: connected, error-passthrough, missing_params, token_exchange
	)

	OAuthExchangeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oauth_exchange_duration_seconds",
			Help:    "OAuth provider call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"call", "status"}, // call: exchange, profile
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	LinkEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_link_events_recorded_total",
			Help: "Total number of mailbox link audit events recorded",
		},
		[]string{"status"}, // status: success, failed, duplicate
	)
)

// RecordLinkAttempt counts one terminal callback outcome.
func RecordLinkAttempt(outcome string) {
	LinkAttempts.WithLabelValues(outcome).Inc()
}

// RecordOAuthCall records a provider round-trip.
func RecordOAuthCall(call, status string, duration time.Duration) {
	OAuthExchangeDuration.WithLabelValues(call, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration records a database query.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration records an HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records MQ handler latency.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementLinkEvent counts one audit-trail write attempt.
func IncrementLinkEvent(status string) {
	LinkEventsRecorded.WithLabelValues(status).Inc()
}
