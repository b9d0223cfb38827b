package document

import (
	"context"
	"fmt"
	"time"

	"studyflow/internal/model"
	"studyflow/internal/queue"
	"studyflow/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Deps wires the document worker.
type Deps struct {
	Consumer  queue.Consumer
	Ingestion service.IngestionService
	DLQ       service.DLQService
	// MaxDeliveries is the last attempt before a job is dead-lettered. Zero retries forever.
	MaxDeliveries int
	// Loops is the number of concurrent Consume loops.
	Loops      int
	JobTimeout time.Duration
}

// Run consumes document jobs until ctx is cancelled.
func Run(ctx context.Context, logger zerolog.Logger, deps Deps) error {
	logger = logger.With().Str("orchestrator", "document").Str("queue", deps.Consumer.Name()).Logger()
	loops := deps.Loops
	if loops < 1 {
		loops = 1
	}
	logger.Info().Int("loops", loops).Int("max_deliveries", deps.MaxDeliveries).Msg("Starting document orchestrator")

	h := handler(logger, deps)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < loops; i++ {
		g.Go(func() error {
			return deps.Consumer.Consume(gctx, h)
		})
	}
	err := g.Wait()
	logger.Info().Msg("Shutting down document orchestrator")
	return err
}

func handler(logger zerolog.Logger, deps Deps) queue.Handler {
	return func(ctx context.Context, d queue.Delivery) error {
		log := logger.With().Str("delivery_id", d.ID).Str("document_id", d.Job.DocumentID).Int("attempt", d.Attempt).Logger()

		if deps.MaxDeliveries > 0 && d.Attempt > deps.MaxDeliveries {
			return deadLetter(ctx, log, deps, d, "max deliveries exceeded")
		}

		jobCtx := ctx
		if deps.JobTimeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(ctx, deps.JobTimeout)
			defer cancel()
		}

		start := time.Now()
		err := deps.Ingestion.Process(jobCtx, d.Job)
		if err == nil {
			log.Debug().Dur("duration", time.Since(start)).Msg("Document job handled")
			return nil
		}
		if deps.MaxDeliveries > 0 && d.Attempt >= deps.MaxDeliveries {
			return deadLetter(ctx, log, deps, d, err.Error())
		}
		return err
	}
}

// deadLetter marks the document failed and records the delivery. The job is
// acknowledged once the document status is written.
func deadLetter(ctx context.Context, log zerolog.Logger, deps Deps, d queue.Delivery, reason string) error {
	details := model.ErrorDetails{"stage": "dead_letter", "error": reason, "attempts": d.Attempt}
	if err := deps.Ingestion.Fail(ctx, d.Job.DocumentID, details); err != nil {
		return fmt.Errorf("mark dead-lettered document failed: %w", err)
	}
	if deps.DLQ != nil {
		if err := deps.DLQ.Record(ctx, deps.Consumer.Name(), d, reason); err != nil {
			log.Error().Err(err).Msg("Failed to record dead letter")
		}
	}
	if dl, ok := deps.Consumer.(queue.DeadLetterer); ok {
		if err := dl.DeadLetter(ctx, d, reason); err != nil {
			log.Error().Err(err).Msg("Failed to send job to dead-letter queue")
		}
	}
	log.Warn().Str("reason", reason).Msg("Exhausted document job deliveries; moved to DLQ")
	return nil
}
