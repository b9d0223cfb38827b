package model

import "time"

// Subscription is a ledger row mirroring the payment provider's subscription.
type Subscription struct {
	ID                 string     `db:"id" json:"id"`
	UserID             string     `db:"user_id" json:"user_id"`
	SubscriptionID     string     `db:"subscription_id" json:"subscription_id"`
	TransactionID      *string    `db:"transaction_id" json:"transaction_id,omitempty"`
	ProductID          *string    `db:"product_id" json:"product_id,omitempty"`
	PriceID            *string    `db:"price_id" json:"price_id,omitempty"`
	Status             string     `db:"status" json:"status"`
	PlanType           string     `db:"plan_type" json:"plan_type"`
	CurrentPeriodStart *time.Time `db:"current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `db:"current_period_end" json:"current_period_end,omitempty"`
	AmountCents        int64      `db:"amount_cents" json:"amount_cents"`
	Currency           string     `db:"currency" json:"currency"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// WebhookEvent records a verified webhook delivery for deduplication.
type WebhookEvent struct {
	ID        string    `db:"id" json:"id"`
	Provider  string    `db:"provider" json:"provider"`
	EventID   string    `db:"event_id" json:"event_id"`
	EventType string    `db:"event_type" json:"event_type"`
	Payload   []byte    `db:"payload" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
