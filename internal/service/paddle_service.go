package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/rs/zerolog"
)

const paddleProvider = "paddle"

// Paddle event types.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionPastDue   = "subscription.past_due"
	EventTransactionCompleted  = "transaction.completed"
)

type paddleEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt *time.Time      `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type paddlePeriod struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type paddleItem struct {
	Price struct {
		ID        string `json:"id"`
		ProductID string `json:"product_id"`
		UnitPrice struct {
			Amount       string `json:"amount"`
			CurrencyCode string `json:"currency_code"`
		} `json:"unit_price"`
	} `json:"price"`
}

// paddleData covers the subscription and transaction entity fields we read.
type paddleData struct {
	ID                   string        `json:"id"`
	Status               string        `json:"status"`
	SubscriptionID       string        `json:"subscription_id"`
	NextBilledAt         *time.Time    `json:"next_billed_at"`
	CancelAt             *time.Time    `json:"cancel_at"`
	CurrencyCode         string        `json:"currency_code"`
	CurrentBillingPeriod *paddlePeriod `json:"current_billing_period"`
	BillingPeriod        *paddlePeriod `json:"billing_period"`
	Items                []paddleItem  `json:"items"`
	CustomData           struct {
		UserID string `json:"user_id"`
	} `json:"custom_data"`
}

type PaddleService interface {
	// VerifySignature checks the paddle-signature header against the raw body.
	VerifySignature(payload []byte, signature string) error
	// HandleWebhook verifies and applies one webhook delivery.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paddleService struct {
	secret string
	users  repository.UserRepository
	ledger repository.SubscriptionRepository
	events repository.WebhookEventRepository
	logger zerolog.Logger
}

func NewPaddleService(
	secret string,
	users repository.UserRepository,
	ledger repository.SubscriptionRepository,
	events repository.WebhookEventRepository,
	logger zerolog.Logger,
) PaddleService {
	return &paddleService{
		secret: secret,
		users:  users,
		ledger: ledger,
		events: events,
		logger: logger.With().Str("service", "PaddleService").Logger(),
	}
}

// VerifySignature accepts a bare hex HMAC-SHA256 of the body or the
// "ts=<unix>;h1=<hex>" form signed over "<ts>:<body>". A missing secret
// rejects every delivery.
func (s *paddleService) VerifySignature(payload []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}
	if s.secret == "" {
		s.logger.Error().Msg("PADDLE_WEBHOOK_SECRET not configured")
		return ErrInvalidSignature
	}

	var ts string
	var digests []string
	for _, part := range strings.Split(signature, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ts":
			ts = strings.TrimSpace(v)
		case "h1":
			digests = append(digests, strings.TrimSpace(v))
		}
	}

	if ts == "" || len(digests) == 0 {
		if hmacEqual(s.secret, payload, signature) {
			return nil
		}
		return ErrInvalidSignature
	}
	signed := append([]byte(ts+":"), payload...)
	for _, d := range digests {
		if hmacEqual(s.secret, signed, d) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func hmacEqual(secret string, body []byte, hexDigest string) bool {
	got, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

func (s *paddleService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := s.VerifySignature(payload, signature); err != nil {
		s.logger.Warn().Err(err).Msg("Paddle webhook rejected")
		return err
	}

	var event paddleEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	s.logger.Info().Str("event_type", event.EventType).Str("event_id", event.EventID).Msg("Paddle webhook received")

	if event.EventID != "" {
		fresh, err := s.events.RecordEvent(ctx, &model.WebhookEvent{
			Provider:  paddleProvider,
			EventID:   event.EventID,
			EventType: event.EventType,
			Payload:   payload,
		})
		if err != nil {
			return fmt.Errorf("record webhook event: %w", err)
		}
		if !fresh {
			s.logger.Info().Str("event_id", event.EventID).Msg("Duplicate Paddle event; skipping")
			return nil
		}
	}

	if err := s.dispatch(ctx, event); err != nil {
		if event.EventID != "" {
			if forgetErr := s.events.ForgetEvent(ctx, paddleProvider, event.EventID); forgetErr != nil {
				s.logger.Error().Err(forgetErr).Str("event_id", event.EventID).Msg("Failed to release webhook event after error")
			}
		}
		return err
	}
	return nil
}

func (s *paddleService) dispatch(ctx context.Context, event paddleEvent) error {
	switch event.EventType {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionCancelled,
		EventSubscriptionPastDue, EventTransactionCompleted:
	default:
		s.logger.Info().Str("event_type", event.EventType).Msg("Unhandled Paddle event")
		return nil
	}

	var data paddleData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	userID := data.CustomData.UserID
	if userID == "" {
		s.logger.Error().Str("event_type", event.EventType).Msg("No user_id in Paddle event data")
		return nil
	}

	upd, ledgerStatus := subscriptionUpdateFor(event.EventType, data)
	if upd == nil {
		return nil
	}
	if err := s.users.ApplySubscriptionUpdate(ctx, userID, *upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error().Str("user_id", userID).Str("event_type", event.EventType).Msg("No profile for Paddle event user")
			return nil
		}
		s.logger.Error().Err(err).Str("user_id", userID).Str("event_type", event.EventType).Msg("Failed to update user subscription")
		return fmt.Errorf("apply subscription update: %w", err)
	}

	if row := ledgerRow(event.EventType, userID, ledgerStatus, data); row != nil {
		if err := s.ledger.UpsertSubscription(ctx, row); err != nil {
			s.logger.Error().Err(err).Str("subscription_id", row.SubscriptionID).Msg("Failed to upsert subscription ledger")
			return fmt.Errorf("upsert subscription ledger: %w", err)
		}
	}
	s.logger.Info().Str("user_id", userID).Str("event_type", event.EventType).Msg("Paddle event applied")
	return nil
}

// subscriptionUpdateFor maps an event to the profile fields it overwrites.
// A nil update means the event changes nothing.
func subscriptionUpdateFor(eventType string, data paddleData) (*model.SubscriptionUpdate, string) {
	premium := func(b bool) *bool { return &b }
	str := func(v string) *string { return &v }

	switch eventType {
	case EventSubscriptionCreated:
		return &model.SubscriptionUpdate{
			IsPremium:      premium(true),
			Status:         str(model.SubscriptionStatusActive),
			SubscriptionID: str(data.ID),
			EndDate:        data.NextBilledAt,
		}, model.SubscriptionStatusActive
	case EventSubscriptionUpdated:
		return &model.SubscriptionUpdate{
			Status:  str(data.Status),
			EndDate: data.NextBilledAt,
		}, data.Status
	case EventSubscriptionCancelled:
		return &model.SubscriptionUpdate{
			IsPremium: premium(false),
			Status:    str(model.SubscriptionStatusCancelled),
			EndDate:   data.CancelAt,
		}, model.SubscriptionStatusCancelled
	case EventSubscriptionPastDue:
		return &model.SubscriptionUpdate{
			Status: str(model.SubscriptionStatusPastDue),
		}, model.SubscriptionStatusPastDue
	case EventTransactionCompleted:
		if data.Status != "completed" {
			return nil, ""
		}
		return &model.SubscriptionUpdate{
			IsPremium: premium(true),
			Status:    str(model.SubscriptionStatusActive),
		}, model.SubscriptionStatusActive
	}
	return nil, ""
}

// ledgerRow builds the subscription ledger entry for an event, or nil when the
// event carries no subscription id.
func ledgerRow(eventType, userID, status string, data paddleData) *model.Subscription {
	row := &model.Subscription{UserID: userID, Status: status, Currency: data.CurrencyCode}
	period := data.CurrentBillingPeriod
	if eventType == EventTransactionCompleted {
		if data.SubscriptionID == "" {
			return nil
		}
		row.SubscriptionID = data.SubscriptionID
		txID := data.ID
		row.TransactionID = &txID
		period = data.BillingPeriod
	} else {
		if data.ID == "" {
			return nil
		}
		row.SubscriptionID = data.ID
	}
	if period != nil {
		row.CurrentPeriodStart = period.StartsAt
		row.CurrentPeriodEnd = period.EndsAt
	}
	if len(data.Items) > 0 {
		price := data.Items[0].Price
		if price.ID != "" {
			id := price.ID
			row.PriceID = &id
			row.PlanType = price.ID
		}
		if price.ProductID != "" {
			pid := price.ProductID
			row.ProductID = &pid
		}
		if cents, err := strconv.ParseInt(price.UnitPrice.Amount, 10, 64); err == nil {
			row.AmountCents = cents
		}
		if row.Currency == "" {
			row.Currency = price.UnitPrice.CurrencyCode
		}
	}
	if row.PlanType == "" {
		row.PlanType = "premium"
	}
	return row
}
