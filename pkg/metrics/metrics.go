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

	// SessionsActive tracks chat sessions currently held in memory.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of chat sessions held in memory",
		},
	)

	// SessionsEndedTotal tracks sessions ended, by reason.
	SessionsEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sessions_ended_total",
			Help: "Chat sessions ended",
		},
		[]string{"reason"},
	)

	// MessagesTotal tracks appended messages by origin.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Messages appended to session logs",
		},
		[]string{"origin"},
	)

	// RuleMatchesTotal tracks which routing rule answered each utterance.
	RuleMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rule_matches_total",
			Help: "Utterances answered, by routing rule",
		},
		[]string{"rule"},
	)

	// PhaseTransitionsTotal tracks dialogue phase changes.
	PhaseTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_phase_transitions_total",
			Help: "Dialogue phase transitions",
		},
		[]string{"from", "to"},
	)

	// ItineraryDays tracks the length of synthesized itineraries.
	ItineraryDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itinerary_days",
			Help:    "Duration in days of synthesized itineraries",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 14, 21, 30},
		},
	)

	// ItinerariesTotal tracks synthesized itineraries by source.
	ItinerariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itineraries_total",
			Help: "Itineraries synthesized",
		},
		[]string{"source"},
	)

	// StreamConnectionsActive tracks open SSE and WebSocket connections.
	StreamConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stream_connections_active",
			Help: "Number of active streaming connections",
		},
		[]string{"transport"},
	)

	// CatalogReloadsTotal tracks catalog reload attempts.
	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Catalog reload attempts",
		},
		[]string{"status"},
	)

	// TranscriptPublishFailures tracks transcript events that could not be published.
	TranscriptPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transcript_publish_failures_total",
			Help: "Transcript messages or events that failed to publish",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordItinerary records a synthesized itinerary.
func RecordItinerary(source string, days int) {
	ItinerariesTotal.WithLabelValues(source).Inc()
	ItineraryDays.Observe(float64(days))
}

// RecordPhaseTransition records a phase change; unchanged phases are ignored.
func RecordPhaseTransition(from, to string) {
	if from == to {
		return
	}
	PhaseTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordCatalogReload records a catalog reload attempt.
func RecordCatalogReload(status string) {
	CatalogReloadsTotal.WithLabelValues(status).Inc()
}

// IncrementStreamConnections increments the active connection count for transport.
func IncrementStreamConnections(transport string) {
	StreamConnectionsActive.WithLabelValues(transport).Inc()
}

// DecrementStreamConnections decrements the active connection count for transport.
func DecrementStreamConnections(transport string) {
	StreamConnectionsActive.WithLabelValues(transport).Dec()
}
