package repository

import (
	"context"
	"database/sql"
	"fmt"

	"studyflow/internal/model"
)

type WebhookEventRepository interface {
	// RecordEvent stores e and reports whether it was new. A repeated
	// (provider, event_id) pair returns false without error.
	RecordEvent(ctx context.Context, e *model.WebhookEvent) (bool, error)
	// ForgetEvent removes a recorded event so a redelivery is applied again.
	ForgetEvent(ctx context.Context, provider, eventID string) error
}

type webhookEventRepo struct {
	db *sql.DB
}

func NewWebhookEventRepo(db *sql.DB) WebhookEventRepository {
	return &webhookEventRepo{db: db}
}

func (r *webhookEventRepo) RecordEvent(ctx context.Context, e *model.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (provider, event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, event_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, e.Provider, e.EventID, e.EventType, string(e.Payload))
	if err != nil {
		return false, fmt.Errorf("record webhook event %s: %w", e.EventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *webhookEventRepo) ForgetEvent(ctx context.Context, provider, eventID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM webhook_events WHERE provider = $1 AND event_id = $2`, provider, eventID)
	if err != nil {
		return fmt.Errorf("forget webhook event %s: %w", eventID, err)
	}
	return nil
}
