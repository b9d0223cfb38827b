package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"studyflow/internal/bootstrap"
	"studyflow/internal/config"
	"studyflow/internal/logger"
	"studyflow/internal/orchestrator/document"

	"github.com/joho/godotenv"
)

func main() {
	// Parse mode flag
	mode := flag.String("mode", "document", "Orchestrator mode: document")
	flag.Parse()

	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if cfg.QueueKind() == "memory" {
		logger.Fatal().Msg("The standalone orchestrator needs a shared queue; set QUEUE_BACKEND to pgmq or pubsub")
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to initialize: %v", err)
	}
	defer c.Close()

	var runErr error
	switch *mode {
	case "document":
		runErr = document.Run(ctx, logger, c.DocumentWorker())
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	if runErr != nil {
		logger.Fatal().Msgf("%s orchestrator failed: %v", *mode, runErr)
	}

	logger.Info().Msgf("%s orchestrator stopped gracefully", *mode)
}
