package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	MessagesTotal          *prometheus.CounterVec
	MatchConfidence        prometheus.Histogram
	MessageDurationSeconds prometheus.Histogram
	ActiveSessions         prometheus.Gauge

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Chat log metrics
	ChatLogWritesTotal  *prometheus.CounterVec
	ArchiveExportsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Chat metrics
		MessagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_messages_total",
				Help: "Total number of processed messages by topic and outcome",
			},
			[]string{"topic", "outcome"}, // outcome: matched, fallback, clarification, error
		),

		MatchConfidence: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatbot_match_confidence",
				Help:    "Similarity score of the winning intent match",
				Buckets: []float64{0.5, 0.55, 0.6, 0.65, 0.7, 0.8, 0.9, 1},
			},
		),

		MessageDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatbot_message_duration_seconds",
				Help:    "End-to-end message processing duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),

		ActiveSessions: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "chatbot_active_sessions",
				Help: "Number of live dialogue sessions",
			},
		),

		// LLM metrics
		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_llm_requests_total",
				Help: "Total number of LLM polish requests by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error, timeout, rate_limited
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatbot_llm_duration_seconds",
				Help:    "LLM request duration in seconds by provider",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5}, // Matches 5s completion timeout
			},
			[]string{"provider"}, // provider: gemini, groq, cerebras
		),

		// Chat log metrics
		ChatLogWritesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_chatlog_writes_total",
				Help: "Total number of chat log inserts by status",
			},
			[]string{"status"}, // status: success, error
		),

		ArchiveExportsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_archive_exports_total",
				Help: "Total number of transcript archive exports by status",
			},
			[]string{"status"}, // status: success, error, empty
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"}, // error_type: bad_request, rate_limit, timeout, internal
		),

		// Rate limiter metrics
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: session, llm
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that waited instead of executing)",
			},
			[]string{"module"}, // module: genai
		),
	}

	return m
}

// RecordMessage records a processed message with its outcome
func (m *Metrics) RecordMessage(topic, outcome string, duration float64) {
	m.MessagesTotal.WithLabelValues(topic, outcome).Inc()
	m.MessageDurationSeconds.Observe(duration)
}

// RecordMatchConfidence records the winning similarity score
func (m *Metrics) RecordMatchConfidence(score float64) {
	m.MatchConfidence.Observe(score)
}

// RecordLLMRequest records an LLM polish request with status
func (m *Metrics) RecordLLMRequest(provider, status string, duration float64) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordChatLogWrite records a chat log insert
func (m *Metrics) RecordChatLogWrite(status string) {
	m.ChatLogWritesTotal.WithLabelValues(status).Inc()
}

// RecordArchiveExport records a transcript archive export
func (m *Metrics) RecordArchiveExport(status string) {
	m.ArchiveExportsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(module string) {
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}
