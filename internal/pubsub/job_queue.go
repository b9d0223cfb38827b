// Package pubsub carries document jobs over Google Pub/Sub.
package pubsub

import (
	"context"
	"errors"
	"fmt"

	"studyflow/internal/queue"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
)

// JobQueue carries document jobs over a Pub/Sub topic and pull subscription.
// Redelivery and dead-lettering past the subscription's limit are handled by
// Pub/Sub itself.
type JobQueue struct {
	client       *pubsub.Client
	topic        *pubsub.Topic
	subscription string
	concurrency  int
	logger       zerolog.Logger
}

// NewJobQueue connects to projectID and returns a JobQueue publishing to topic
// and pulling from subscription.
func NewJobQueue(ctx context.Context, projectID, topic, subscription string, concurrency int, logger zerolog.Logger) (*JobQueue, error) {
	if projectID == "" {
		return nil, errors.New("GCP project ID is required for the Pub/Sub job queue")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &JobQueue{
		client:       client,
		topic:        client.Topic(topic),
		subscription: subscription,
		concurrency:  concurrency,
		logger:       logger.With().Str("subscription", subscription).Logger(),
	}, nil
}

func (q *JobQueue) Name() string { return q.subscription }

// Publish encodes job and waits for the server to assign a message ID.
func (q *JobQueue) Publish(ctx context.Context, job queue.Job) error {
	payload, err := job.Encode()
	if err != nil {
		return err
	}
	result := q.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"document_id": job.DocumentID},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish document job to topic %s: %w", q.topic.ID(), err)
	}
	q.logger.Debug().Str("message_id", id).Str("document_id", job.DocumentID).Msg("Document job published")
	return nil
}

// Consume blocks receiving messages until ctx is done. Handler errors Nack the
// message so Pub/Sub redelivers it.
func (q *JobQueue) Consume(ctx context.Context, h queue.Handler) error {
	sub := q.client.Subscription(q.subscription)
	if q.concurrency > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = q.concurrency
	}
	err := sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		job, err := queue.DecodeJob(m.Data)
		if err != nil {
			q.logger.Error().Err(err).Str("message_id", m.ID).Msg("Failed to decode document job; acknowledging")
			m.Ack()
			return
		}
		attempt := 1
		if m.DeliveryAttempt != nil {
			attempt = *m.DeliveryAttempt
		}
		d := queue.Delivery{ID: m.ID, Job: job, Payload: m.Data, Attempt: attempt}
		if err := h(ctx, d); err != nil {
			q.logger.Warn().Err(err).Str("message_id", m.ID).Str("document_id", job.DocumentID).Msg("Document job failed; nacking")
			m.Nack()
			return
		}
		m.Ack()
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("receive from %s: %w", q.subscription, err)
	}
	return nil
}

// Close flushes pending publishes and releases the client.
func (q *JobQueue) Close() error {
	q.topic.Stop()
	return q.client.Close()
}

var (
	_ queue.Publisher = (*JobQueue)(nil)
	_ queue.Consumer  = (*JobQueue)(nil)
)
