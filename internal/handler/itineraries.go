package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

// ItineraryHandler handles direct itinerary synthesis.
type ItineraryHandler struct {
	service *service.SessionService
	logger  *logger.Logger
}

// NewItineraryHandler creates a new itinerary handler.
func NewItineraryHandler(svc *service.SessionService, log *logger.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/itineraries
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.service.Synthesize(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidItinerary) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to synthesize itinerary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to synthesize itinerary")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
