package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"studyflow/internal/api/v1/router"
	"studyflow/internal/bootstrap"
	"studyflow/internal/config"
	"studyflow/internal/logger"
	"studyflow/internal/orchestrator/document"

	"github.com/joho/godotenv"
)

// @title StudyFlow API
// @version 1.0
// @description Document study aids, narrated stories and subscriptions.
// @host localhost:8080
// @BasePath /
// @Schemes http https

func main() {
	logger := logger.New()

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Build dependencies
	c, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to initialize: %v", err)
	}
	defer c.Close()

	// 3. Start the embedded document worker
	workerDone := make(chan struct{})
	if cfg.EmbeddedWorker {
		go func() {
			defer close(workerDone)
			if err := document.Run(ctx, logger, c.DocumentWorker()); err != nil {
				logger.Error().Err(err).Msg("Embedded document worker stopped")
			}
		}()
	} else {
		close(workerDone)
	}

	// 4. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(c),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Msgf("Listen: %s", err)
		}
	}()

	// 5. Graceful shutdown
	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received, exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-workerDone
	logger.Info().Msg("Server shut down gracefully")
}
