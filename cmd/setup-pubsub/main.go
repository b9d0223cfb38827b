package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"studyflow/internal/config"
	"studyflow/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	retention   = 7 * 24 * time.Hour
	expiration  = 31 * 24 * time.Hour
	maxAckDelay = 600 * time.Second
)

// Provisions the document job topic, its dead-letter topic and the pull
// subscriptions the worker reads from.
func main() {
	reset := flag.Bool("reset", false, "Delete every topic and subscription first (emulator only)")
	flag.Parse()

	logger := logger.New()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Failed to load config: %v", err)
	}
	if cfg.GCPProjectID == "" {
		logger.Fatal().Msg("GCP_PROJECT_ID is not set")
	}

	var opts []option.ClientOption
	if cfg.PubSubEmulatorHost != "" {
		opts = append(opts, option.WithEndpoint(cfg.PubSubEmulatorHost), option.WithoutAuthentication())
	} else if *reset {
		logger.Fatal().Msg("-reset is only allowed against the emulator; set PUBSUB_EMULATOR_HOST")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID, opts...)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Pub/Sub client")
		}
	}()

	if *reset {
		if err := resetEmulator(ctx, client, logger); err != nil {
			logger.Fatal().Err(err).Msg("Emulator reset failed")
		}
	}
	if err := ensureDocumentResources(ctx, client, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Pub/Sub setup failed")
	}
	logger.Info().Msg("Pub/Sub setup complete")
}

func resetEmulator(ctx context.Context, client *pubsub.Client, logger zerolog.Logger) error {
	subs := client.Subscriptions(ctx)
	for {
		sub, err := subs.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return err
		}
		logger.Info().Str("subscription", sub.ID()).Msg("Deleting subscription")
		if err := sub.Delete(ctx); err != nil {
			logger.Warn().Err(err).Str("subscription", sub.ID()).Msg("Failed to delete subscription")
		}
	}

	topics := client.Topics(ctx)
	for {
		topic, err := topics.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return err
		}
		logger.Info().Str("topic", topic.ID()).Msg("Deleting topic")
		if err := topic.Delete(ctx); err != nil {
			logger.Warn().Err(err).Str("topic", topic.ID()).Msg("Failed to delete topic")
		}
	}
	return nil
}

func ensureDocumentResources(ctx context.Context, client *pubsub.Client, cfg *config.Config, logger zerolog.Logger) error {
	topicID := cfg.PubSubDocumentTopic
	dlqTopicID := topicID + "-dlq"

	dlqTopic, err := ensureTopic(ctx, client, logger, dlqTopicID)
	if err != nil {
		return err
	}
	mainTopic, err := ensureTopic(ctx, client, logger, topicID)
	if err != nil {
		return err
	}

	retry := &pubsub.RetryPolicy{
		MinimumBackoff: time.Duration(cfg.DocumentBackoffInitialSec) * time.Second,
		MaximumBackoff: time.Duration(cfg.DocumentBackoffMaxSec) * time.Second,
	}
	if err := ensureSubscription(ctx, client, logger, cfg.PubSubDocumentSubscription, pubsub.SubscriptionConfig{
		Topic:            mainTopic,
		AckDeadline:      ackDeadline(cfg.DocumentVisibilityTimeoutSec),
		ExpirationPolicy: expiration,
		RetryPolicy:      retry,
		DeadLetterPolicy: &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     dlqTopic.String(),
			MaxDeliveryAttempts: deliveryAttempts(cfg.DocumentMaxDeliveries),
		},
	}); err != nil {
		return err
	}
	return ensureSubscription(ctx, client, logger, dlqTopicID+"-sub", pubsub.SubscriptionConfig{
		Topic:            dlqTopic,
		AckDeadline:      ackDeadline(cfg.DocumentVisibilityTimeoutSec),
		ExpirationPolicy: expiration,
	})
}

func ensureTopic(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, topicID string) (*pubsub.Topic, error) {
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Info().Str("topic", topicID).Msg("Topic already exists")
		return topic, nil
	}
	logger.Info().Str("topic", topicID).Dur("retention", retention).Msg("Creating topic")
	return client.CreateTopicWithConfig(ctx, topicID, &pubsub.TopicConfig{RetentionDuration: retention})
}

func ensureSubscription(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, subID string, want pubsub.SubscriptionConfig) error {
	sub := client.Subscription(subID)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.Info().Str("subscription", subID).Msg("Creating pull subscription")
		_, err := client.CreateSubscription(ctx, subID, want)
		return err
	}

	have, err := sub.Config(ctx)
	if err != nil {
		return err
	}
	update := pubsub.SubscriptionConfigToUpdate{}
	changed := false
	if have.AckDeadline != want.AckDeadline {
		update.AckDeadline = want.AckDeadline
		changed = true
	}
	if want.RetryPolicy != nil && (have.RetryPolicy == nil || *have.RetryPolicy != *want.RetryPolicy) {
		update.RetryPolicy = want.RetryPolicy
		changed = true
	}
	if want.DeadLetterPolicy != nil && (have.DeadLetterPolicy == nil || have.DeadLetterPolicy.MaxDeliveryAttempts != want.DeadLetterPolicy.MaxDeliveryAttempts) {
		update.DeadLetterPolicy = want.DeadLetterPolicy
		changed = true
	}
	if !changed {
		logger.Info().Str("subscription", subID).Msg("Subscription is up to date")
		return nil
	}
	logger.Info().Str("subscription", subID).Msg("Updating subscription")
	_, err = sub.Update(ctx, update)
	return err
}

func ackDeadline(sec int) time.Duration {
	d := time.Duration(sec) * time.Second
	if d < 10*time.Second {
		return 10 * time.Second
	}
	if d > maxAckDelay {
		return maxAckDelay
	}
	return d
}

// deliveryAttempts clamps to the range Pub/Sub accepts.
func deliveryAttempts(n int) int {
	if n < 5 {
		return 5
	}
	if n > 100 {
		return 100
	}
	return n
}
