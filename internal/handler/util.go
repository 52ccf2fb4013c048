// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/explorejh/travel-assistant/internal/engine"
	"github.com/explorejh/travel-assistant/internal/middleware"
	"github.com/explorejh/travel-assistant/internal/service"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// loadSession resolves the {id} URL parameter to a session owned by the caller,
// writing the error response itself when it cannot.
func loadSession(w http.ResponseWriter, r *http.Request, sessions *service.SessionService) (*engine.Session, bool) {
	sessionID := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	sess, err := sessions.Get(r.Context(), middleware.GetUserID(r.Context()), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load session")
		}
		return nil, false
	}
	return sess, true
}

// afterSequence parses the after_sequence query parameter, defaulting to 0.
func afterSequence(r *http.Request) uint64 {
	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
