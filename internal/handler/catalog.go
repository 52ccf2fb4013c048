package handler

import (
	"net/http"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/engine"
	"github.com/explorejh/travel-assistant/internal/service"
)

// CatalogHandler exposes the reference data new sessions use.
type CatalogHandler struct {
	service *service.SessionService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(svc *service.SessionService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// CatalogResponse is the response of GET /api/v1/catalog.
type CatalogResponse struct {
	Destinations     []string                  `json:"destinations"`
	Activities       map[string][]string       `json:"activities"`
	TransportOptions []catalog.TransportOption `json:"transport_options"`
	Topics           []string                  `json:"topics"`
	DefaultPlaces    []string                  `json:"default_places"`
	Defaults         catalog.Defaults          `json:"defaults"`
	MaxDurationDays  int                       `json:"max_duration_in_days"`
	QuickReplies     engine.QuickReplyPresets  `json:"quick_replies"`
}

// Get handles GET /api/v1/catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.service.Catalog()

	writeJSON(w, http.StatusOK, &CatalogResponse{
		Destinations:     c.Destinations,
		Activities:       c.ActivityMap,
		TransportOptions: c.TransportOptions,
		Topics:           c.TopicNames(),
		DefaultPlaces:    c.DefaultPlaces,
		Defaults:         c.Defaults,
		MaxDurationDays:  c.MaxDuration(),
		QuickReplies:     engine.Presets(),
	})
}
