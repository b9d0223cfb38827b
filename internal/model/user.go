package model

import "time"

// Subscription status values stored on the user profile.
const (
	SubscriptionStatusFree      = "free"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusPastDue   = "past_due"
)

// User represents a user profile keyed by the identity provider's id.
type User struct {
	ID                  string     `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	Name                string     `db:"name" json:"name"`
	IsPremium           bool       `db:"is_premium" json:"is_premium"`
	StoriesGenerated    int        `db:"stories_generated" json:"stories_generated"`
	DocumentsProcessed  int        `db:"documents_processed" json:"documents_processed"`
	SubscriptionStatus  string     `db:"subscription_status" json:"subscription_status"`
	SubscriptionID      *string    `db:"subscription_id" json:"subscription_id,omitempty"`
	SubscriptionEndDate *time.Time `db:"subscription_end_date" json:"subscription_end_date,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// SubscriptionUpdate is a partial overwrite of a user's subscription fields.
// Nil fields are left untouched.
type SubscriptionUpdate struct {
	IsPremium      *bool
	Status         *string
	SubscriptionID *string
	EndDate        *time.Time
}

// Apply copies the non-nil fields of upd onto u.
func (upd SubscriptionUpdate) Apply(u *User) {
	if upd.IsPremium != nil {
		u.IsPremium = *upd.IsPremium
	}
	if upd.Status != nil {
		u.SubscriptionStatus = *upd.Status
	}
	if upd.SubscriptionID != nil {
		id := *upd.SubscriptionID
		u.SubscriptionID = &id
	}
	if upd.EndDate != nil {
		end := *upd.EndDate
		u.SubscriptionEndDate = &end
	}
}

// NewFreeUser returns a profile with free-tier defaults.
func NewFreeUser(id, email, name string) *User {
	now := time.Now().UTC()
	return &User{
		ID:                 id,
		Email:              email,
		Name:               name,
		SubscriptionStatus: SubscriptionStatusFree,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
