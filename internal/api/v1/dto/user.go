package dto

import (
	"time"

	"studyflow/internal/model"
)

// SubscriptionStatusResponseDTO is returned by GET /api/subscription
type SubscriptionStatusResponseDTO struct {
	IsPremium           bool                 `json:"isPremium"`
	SubscriptionStatus  string               `json:"subscriptionStatus"`
	SubscriptionID      *string              `json:"subscriptionId"`
	SubscriptionEndDate *time.Time           `json:"subscriptionEndDate"`
	Ledger              []model.Subscription `json:"ledger"`
}
