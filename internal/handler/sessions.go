package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/middleware"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

// SessionHandler handles session endpoints.
type SessionHandler struct {
	service *service.SessionService
	logger  *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(svc *service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	sess, err := h.service.Create(ctx, userID)
	if errors.Is(err, service.ErrDraining) {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sess.View())
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	resp, err := h.service.List(ctx, userID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list sessions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := loadSession(w, r, h.service)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sess.View())
}

// Delete handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := loadSession(w, r, h.service)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), sess.OwnerID(), sess.ID()); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("failed to delete session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
