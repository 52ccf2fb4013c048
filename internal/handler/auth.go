package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/middleware"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

// AuthHandler issues demo guest tokens.
type AuthHandler struct {
	secret string
	ttl    time.Duration
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(secret string, ttl time.Duration, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		secret: secret,
		ttl:    ttl,
		logger: log,
	}
}

// GuestTokenResponse is the response of POST /auth/guest.
type GuestTokenResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Guest handles POST /auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	token, userID, expiresAt, err := middleware.IssueGuestToken(h.secret, h.ttl)
	if err != nil {
		h.logger.Error("failed to issue guest token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, &GuestTokenResponse{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
}
