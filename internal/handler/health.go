package handler

import (
	"net/http"

	natsclient "github.com/explorejh/travel-assistant/internal/nats"
	"github.com/explorejh/travel-assistant/internal/service"
)

// Transcript publisher states reported by /ready.
const (
	TranscriptsDisabled     = "disabled"
	TranscriptsConnected    = "connected"
	TranscriptsDisconnected = "disconnected"
)

// ReadinessResponse is the body of GET /ready.
type ReadinessResponse struct {
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Transcripts string `json:"transcripts"`
	service.Stats
}

// HealthHandler reports liveness and whether the process should receive chat traffic.
type HealthHandler struct {
	sessions   *service.SessionService
	natsClient *natsclient.Client
}

// NewHealthHandler creates a health handler. natsClient may be nil when transcript
// publishing is disabled.
func NewHealthHandler(sessions *service.SessionService, natsClient *natsclient.Client) *HealthHandler {
	return &HealthHandler{
		sessions:   sessions,
		natsClient: natsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready. A draining service or a configured but disconnected
// transcript publisher makes the instance not ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{
		Status:      "ready",
		Transcripts: h.transcriptState(),
		Stats:       h.sessions.Stats(),
	}

	switch {
	case resp.Draining:
		resp.Status, resp.Reason = "not ready", "shutting down"
	case resp.Transcripts == TranscriptsDisconnected:
		resp.Status, resp.Reason = "not ready", "transcript publisher disconnected"
	}

	status := http.StatusOK
	if resp.Reason != "" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *HealthHandler) transcriptState() string {
	switch {
	case h.natsClient == nil:
		return TranscriptsDisabled
	case h.natsClient.IsConnected():
		return TranscriptsConnected
	default:
		return TranscriptsDisconnected
	}
}
