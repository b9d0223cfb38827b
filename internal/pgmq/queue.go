package pgmq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"studyflow/internal/queue"

	"github.com/rs/zerolog"
)

// JobQueue carries document jobs over a pgmq queue, with a sibling
// dead-letter queue for exhausted jobs.
type JobQueue struct {
	client        *Client
	queue         string
	deadLetter    string
	visibilitySec int
	pollSec       int
	maxMessages   int
	backoffMax    time.Duration
	logger        zerolog.Logger
}

// JobQueueConfig holds polling parameters for a JobQueue.
type JobQueueConfig struct {
	Queue         string
	DeadLetter    string
	VisibilitySec int
	PollSec       int
	MaxMessages   int
	BackoffMax    time.Duration
}

// NewJobQueue returns a JobQueue over client.
func NewJobQueue(client *Client, cfg JobQueueConfig, logger zerolog.Logger) *JobQueue {
	if cfg.MaxMessages < 1 {
		cfg.MaxMessages = 1
	}
	return &JobQueue{
		client:        client,
		queue:         cfg.Queue,
		deadLetter:    cfg.DeadLetter,
		visibilitySec: cfg.VisibilitySec,
		pollSec:       cfg.PollSec,
		maxMessages:   cfg.MaxMessages,
		backoffMax:    cfg.BackoffMax,
		logger:        logger.With().Str("queue", cfg.Queue).Logger(),
	}
}

func (q *JobQueue) Name() string { return q.queue }

func (q *JobQueue) Publish(ctx context.Context, job queue.Job) error {
	payload, err := job.Encode()
	if err != nil {
		return err
	}
	_, err = q.client.Send(ctx, q.queue, payload)
	return err
}

// Consume polls the queue until ctx is cancelled. Successful deliveries are
// deleted; failed ones become visible again after an exponential delay.
func (q *JobQueue) Consume(ctx context.Context, h queue.Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := q.client.ReadWithPoll(ctx, q.queue, q.visibilitySec, q.maxMessages, q.pollSec)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.logger.Error().Err(err).Msg("Error reading document queue")
			sleep(ctx, time.Second)
			continue
		}

		for _, msg := range msgs {
			q.handle(ctx, h, msg)
		}
	}
}

func (q *JobQueue) handle(ctx context.Context, h queue.Handler, msg *Message) {
	log := q.logger.With().Int64("msg_id", msg.ID).Int("read_ct", msg.ReadCount).Logger()

	job, err := queue.DecodeJob(msg.Data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode document job; moving to dead-letter queue")
		d := queue.Delivery{ID: strconv.FormatInt(msg.ID, 10), Payload: msg.Data, Attempt: msg.ReadCount}
		if err := q.DeadLetter(ctx, d, err.Error()); err != nil {
			log.Error().Err(err).Msg("Failed to dead-letter undecodable job")
			return
		}
		if err := q.client.Delete(ctx, q.queue, msg.ID); err != nil {
			log.Error().Err(err).Msg("Error deleting undecodable job")
		}
		return
	}

	d := queue.Delivery{ID: strconv.FormatInt(msg.ID, 10), Job: job, Payload: msg.Data, Attempt: msg.ReadCount}
	if err := h(ctx, d); err != nil {
		delay := backoffSeconds(msg.ReadCount, q.backoffMax)
		log.Warn().Err(err).Int("retry_in_sec", delay).Str("document_id", job.DocumentID).Msg("Document job failed; will be redelivered")
		if err := q.client.SetVisibility(ctx, q.queue, msg.ID, delay); err != nil {
			log.Error().Err(err).Msg("Failed to reschedule document job")
		}
		return
	}
	if err := q.client.Delete(ctx, q.queue, msg.ID); err != nil {
		log.Error().Err(err).Msg("Error deleting document job")
	}
}

// DeadLetter copies the delivery into the dead-letter queue.
func (q *JobQueue) DeadLetter(ctx context.Context, d queue.Delivery, reason string) error {
	body, err := json.Marshal(map[string]any{
		"message_id": d.ID,
		"attempt":    d.Attempt,
		"reason":     reason,
		"payload":    json.RawMessage(validJSON(d.Payload)),
	})
	if err != nil {
		return err
	}
	_, err = q.client.Send(ctx, q.deadLetter, body)
	return err
}

func validJSON(b []byte) []byte {
	if json.Valid(b) {
		return b
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}

// backoffSeconds doubles from one second per attempt, capped at limit.
func backoffSeconds(attempt int, limit time.Duration) int {
	if attempt < 1 {
		attempt = 1
	}
	backoff := time.Second
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if limit > 0 && backoff >= limit {
			backoff = limit
			break
		}
	}
	return int(backoff / time.Second)
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

var (
	_ queue.Publisher    = (*JobQueue)(nil)
	_ queue.Consumer     = (*JobQueue)(nil)
	_ queue.DeadLetterer = (*JobQueue)(nil)
)
