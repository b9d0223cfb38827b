package repository

import (
	"context"
	"database/sql"
	"fmt"

	"studyflow/internal/model"
)

// SubscriptionRepository stores the payment provider's subscription ledger.
type SubscriptionRepository interface {
	// UpsertSubscription inserts or refreshes the ledger row keyed by the external subscription id.
	UpsertSubscription(ctx context.Context, s *model.Subscription) error
	ListSubscriptionsByUser(ctx context.Context, userID string, limit int) ([]model.Subscription, error)
}

type subscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo creates a new SubscriptionRepository.
func NewSubscriptionRepo(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) UpsertSubscription(ctx context.Context, s *model.Subscription) error {
	const q = `
		INSERT INTO subscriptions (user_id, subscription_id, transaction_id, product_id, price_id, status, plan_type,
			current_period_start, current_period_end, amount_cents, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (subscription_id) DO UPDATE
		SET transaction_id = COALESCE(EXCLUDED.transaction_id, subscriptions.transaction_id),
			product_id = COALESCE(EXCLUDED.product_id, subscriptions.product_id),
			price_id = COALESCE(EXCLUDED.price_id, subscriptions.price_id),
			status = EXCLUDED.status,
			plan_type = EXCLUDED.plan_type,
			current_period_start = COALESCE(EXCLUDED.current_period_start, subscriptions.current_period_start),
			current_period_end = COALESCE(EXCLUDED.current_period_end, subscriptions.current_period_end),
			amount_cents = CASE WHEN EXCLUDED.amount_cents > 0 THEN EXCLUDED.amount_cents ELSE subscriptions.amount_cents END,
			currency = EXCLUDED.currency,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	if s.Currency == "" {
		s.Currency = "USD"
	}
	err := r.db.QueryRowContext(ctx, q,
		s.UserID, s.SubscriptionID, s.TransactionID, s.ProductID, s.PriceID, s.Status, s.PlanType,
		s.CurrentPeriodStart, s.CurrentPeriodEnd, s.AmountCents, s.Currency,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription %s for user %s: %w", s.SubscriptionID, s.UserID, translate(err))
	}
	return nil
}

func (r *subscriptionRepo) ListSubscriptionsByUser(ctx context.Context, userID string, limit int) ([]model.Subscription, error) {
	const q = `
		SELECT id, user_id, subscription_id, transaction_id, product_id, price_id, status, plan_type,
			current_period_start, current_period_end, amount_cents, currency, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch subscriptions for user %s: %w", userID, err)
	}
	defer rows.Close()

	subs := []model.Subscription{}
	for rows.Next() {
		var s model.Subscription
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.SubscriptionID,
			&s.TransactionID,
			&s.ProductID,
			&s.PriceID,
			&s.Status,
			&s.PlanType,
			&s.CurrentPeriodStart,
			&s.CurrentPeriodEnd,
			&s.AmountCents,
			&s.Currency,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscription row: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return subs, nil
}
