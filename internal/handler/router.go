package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/explorejh/travel-assistant/internal/config"
	"github.com/explorejh/travel-assistant/internal/middleware"
	natsclient "github.com/explorejh/travel-assistant/internal/nats"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Config     *config.Config
	Sessions   *service.SessionService
	NATSClient *natsclient.Client
	Logger     *logger.Logger

	// HeartbeatInterval overrides DefaultHeartbeatInterval for SSE streams.
	HeartbeatInterval time.Duration
}

// NewRouter assembles the API routes.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	log := deps.Logger

	healthHandler := NewHealthHandler(deps.Sessions, deps.NATSClient)
	authHandler := NewAuthHandler(cfg.JWTSecret, cfg.JWTExpiration, log)
	sessionHandler := NewSessionHandler(deps.Sessions, log)
	messageHandler := NewMessageHandler(deps.Sessions, log)
	streamHandler := NewStreamHandler(deps.Sessions, deps.HeartbeatInterval, log)
	wsHandler := NewWebSocketHandler(deps.Sessions, cfg.AllowedOrigins, log)
	itineraryHandler := NewItineraryHandler(deps.Sessions, log)
	catalogHandler := NewCatalogHandler(deps.Sessions)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.With(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)).
		Post("/auth/guest", authHandler.Guest)

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, cfg.AuthEnabled))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/catalog", catalogHandler.Get)
		r.Post("/itineraries", itineraryHandler.Create)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/", sessionHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)

				// Messages
				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Send)

				// Live transports
				r.Get("/stream", streamHandler.Stream)
				r.Get("/ws", wsHandler.Serve)
			})
		})
	})

	return r
}
