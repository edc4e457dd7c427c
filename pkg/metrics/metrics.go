// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TurnsTotal counts handled turns by resolved intent and outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turns_total",
			Help: "Total conversation turns handled",
		},
		[]string{"intent", "ok", "language"},
	)

	// TurnDuration tracks end-to-end turn latency.
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turn_duration_seconds",
			Help:    "Conversation turn duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"intent"},
	)

	// ClassificationsTotal counts raw classifications by tier.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_classifications_total",
			Help: "Raw intent classifications by tier",
		},
		[]string{"intent", "tier"},
	)

	// ResolverOverridesTotal counts turns where context changed the raw intent.
	ResolverOverridesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_resolver_overrides_total",
			Help: "Turns whose intent was changed by the continuity resolver",
		},
		[]string{"rule"},
	)

	// DispatchDuration tracks option generation latency.
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Option generation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"intent", "ok"},
	)

	// PackagesGenerated tracks how many packages each trip turn produced.
	PackagesGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trip_packages_generated",
			Help:    "Packages synthesized per trip planning turn",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 10, 12},
		},
	)

	// SessionsCreated counts new sessions.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total sessions created",
		},
	)

	// SessionResets counts explicit resets.
	SessionResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_resets_total",
			Help: "Total session resets",
		},
	)

	// LLMStreamDuration tracks LLM response duration.
	LLMStreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_stream_duration_seconds",
			Help:    "LLM response duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// StreamConnectionsActive tracks open SSE and WebSocket connections.
	StreamConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stream_connections_active",
			Help: "Number of active streaming connections",
		},
		[]string{"transport"},
	)

	// JournalPublishFailures counts turns that could not be journaled.
	JournalPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_publish_failures_total",
			Help: "Turn events that failed to publish to the journal",
		},
	)

	// NATSStreamMessages tracks messages in the journal stream.
	NATSStreamMessages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nats_stream_messages",
			Help: "Number of messages in NATS stream",
		},
		[]string{"stream"},
	)

	// NATSStreamBytes tracks bytes in the journal stream.
	NATSStreamBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nats_stream_bytes",
			Help: "Bytes in NATS stream",
		},
		[]string{"stream"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordTurn records the outcome of a conversation turn.
func RecordTurn(intent, language string, ok bool, duration float64) {
	TurnsTotal.WithLabelValues(intent, boolLabel(ok), language).Inc()
	TurnDuration.WithLabelValues(intent).Observe(duration)
}

// RecordClassification records which tier produced a raw intent.
func RecordClassification(intent, tier string) {
	ClassificationsTotal.WithLabelValues(intent, tier).Inc()
}

// RecordOverride records a context-driven intent change.
func RecordOverride(rule string) {
	ResolverOverridesTotal.WithLabelValues(rule).Inc()
}

// RecordDispatch records option generation latency.
func RecordDispatch(intent string, ok bool, duration float64) {
	DispatchDuration.WithLabelValues(intent, boolLabel(ok)).Observe(duration)
}

// RecordLLMStream records metrics for an LLM response.
func RecordLLMStream(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMStreamDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// IncrementStreamConnections increments the active connection count.
func IncrementStreamConnections(transport string) {
	StreamConnectionsActive.WithLabelValues(transport).Inc()
}

// DecrementStreamConnections decrements the active connection count.
func DecrementStreamConnections(transport string) {
	StreamConnectionsActive.WithLabelValues(transport).Dec()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
