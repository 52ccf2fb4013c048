// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/config"
	"github.com/explorejh/travel-assistant/internal/handler"
	natsclient "github.com/explorejh/travel-assistant/internal/nats"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
	"github.com/explorejh/travel-assistant/pkg/tracing"
)

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("starting API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "explorejh-travel-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	catalogs, err := catalog.OpenStore(cfg.CatalogPath, log)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if cfg.CatalogWatch && cfg.CatalogPath != "" {
		if err := catalogs.Watch(ctx); err != nil {
			log.Warn("catalog hot reload disabled", zap.Error(err))
		}
	}

	// Transcript publishing is optional; sessions work without it.
	var (
		natsClient *natsclient.Client
		publisher  service.TranscriptPublisher = service.NopPublisher{}
	)
	if cfg.NATSEnabled() {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			return fmt.Errorf("failed to ensure stream: %w", err)
		}
		publisher = streamManager
	}

	sessions := service.NewSessionService(catalogs, publisher, service.Config{
		TypingDelay:          cfg.TypingDelay,
		TypingJitter:         cfg.TypingJitter,
		CancelPendingOnClose: cfg.CancelPendingOnClose,
		IdleTimeout:          cfg.SessionIdleTimeout,
	}, log)
	if cfg.SessionIdleTimeout > 0 && cfg.SessionSweepInterval > 0 {
		go sessions.RunJanitor(ctx, cfg.SessionSweepInterval)
	}

	server := &http.Server{
		Addr: ":" + cfg.ServerPort,
		Handler: handler.NewRouter(handler.Dependencies{
			Config:     cfg,
			Sessions:   sessions,
			NATSClient: natsClient,
			Logger:     log,
		}),
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	sessions.Drain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	sessions.Shutdown(shutdownCtx)

	log.Info("server stopped")
	return nil
}
