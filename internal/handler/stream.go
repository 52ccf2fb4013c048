package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
	"github.com/explorejh/travel-assistant/pkg/metrics"
)

// DefaultHeartbeatInterval is how often idle streams receive a heartbeat.
const DefaultHeartbeatInterval = 30 * time.Second

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	service   *service.SessionService
	logger    *logger.Logger
	heartbeat time.Duration
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(svc *service.SessionService, heartbeat time.Duration, log *logger.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &StreamHandler{
		service:   svc,
		logger:    log,
		heartbeat: heartbeat,
	}
}

// Stream handles GET /api/v1/sessions/:id/stream
// Supports ?after_sequence=N for resuming from a specific point
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := loadSession(w, r, h.service)
	if !ok {
		return
	}
	ctx := r.Context()
	after := afterSequence(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.IncrementStreamConnections("sse")
	defer metrics.DecrementStreamConnections("sse")

	log := h.logger.WithSession(sess.ID(), sess.OwnerID())

	// Subscribe before replaying so nothing appended in between is lost;
	// duplicates are skipped by sequence below.
	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"session_id": sess.ID(),
	})

	lastSequence := after
	replay := sess.MessagesAfter(after)
	for _, msg := range replay {
		if err := sendSSEEvent(w, flusher, "message", msg); err != nil {
			return
		}
		lastSequence = msg.Sequence
	}

	sendSSEEvent(w, flusher, "replay_complete", &model.ReplayCompleteEvent{
		LastSequence: lastSequence,
		MessageCount: len(replay),
	})

	log.Debug("message replay complete",
		zap.Int("messages_replayed", len(replay)),
		zap.Uint64("last_sequence", lastSequence),
	)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("SSE client disconnected")
			return

		case msg, ok := <-updates:
			if !ok {
				sendSSEEvent(w, flusher, "closed", &model.ErrorEvent{
					Code:    "stream_closed",
					Message: "session ended or client fell behind",
				})
				return
			}
			if msg.Sequence <= lastSequence {
				continue
			}
			if err := sendSSEEvent(w, flusher, "message", msg); err != nil {
				return
			}
			lastSequence = msg.Sequence

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
