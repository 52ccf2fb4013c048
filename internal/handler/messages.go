package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/middleware"
	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	service *service.SessionService
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc *service.SessionService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/v1/sessions/:id/messages
// Supports ?after_sequence=N for polling clients
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := loadSession(w, r, h.service)
	if !ok {
		return
	}

	after := afterSequence(r)
	msgs := sess.MessagesAfter(after)
	if msgs == nil {
		msgs = []model.Message{}
	}

	last := after
	if len(msgs) > 0 {
		last = msgs[len(msgs)-1].Sequence
	}

	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		Messages:     msgs,
		LastSequence: last,
		Pending:      sess.Pending(),
	})
}

// Send handles POST /api/v1/sessions/:id/messages
// The user message is appended immediately; the assistant reply follows on the
// stream after the typing delay.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	sess, ok := loadSession(w, r, h.service)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Submit(r.Context(), sess.OwnerID(), sess.ID(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("failed to submit message", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	if !resp.Accepted {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}
