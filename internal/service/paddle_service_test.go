package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/repository/memory"

	"github.com/rs/zerolog"
)

const testWebhookSecret = "whsec_test"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newPaddleFixture(secret string) (*repository.Store, PaddleService) {
	store := memory.NewStore()
	return store, NewPaddleService(secret, store.Users, store.Subscriptions, store.WebhookEvents, zerolog.Nop())
}

const subscriptionCreated = `{
	"event_id": "evt_01",
	"event_type": "subscription.created",
	"data": {
		"id": "sub_01",
		"status": "active",
		"currency_code": "USD",
		"next_billed_at": "2026-11-17T00:00:00Z",
		"current_billing_period": {"starts_at": "2026-10-17T00:00:00Z", "ends_at": "2026-11-17T00:00:00Z"},
		"items": [{"price": {"id": "pri_monthly", "product_id": "pro_01", "unit_price": {"amount": "999", "currency_code": "USD"}}}],
		"custom_data": {"user_id": "u1"}
	}
}`

func TestVerifySignatureForms(t *testing.T) {
	_, svc := newPaddleFixture(testWebhookSecret)
	body := []byte(`{"event_type":"x"}`)

	if err := svc.VerifySignature(body, ""); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
	if err := svc.VerifySignature(body, sign(testWebhookSecret, body)); err != nil {
		t.Fatalf("raw hex signature rejected: %v", err)
	}
	ts := "1760659200"
	h1 := sign(testWebhookSecret, append([]byte(ts+":"), body...))
	if err := svc.VerifySignature(body, "ts="+ts+";h1="+h1); err != nil {
		t.Fatalf("ts/h1 signature rejected: %v", err)
	}
	if err := svc.VerifySignature(body, "ts="+ts+";h1="+sign("other", body)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if err := svc.VerifySignature(body, "not-hex"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for garbage, got %v", err)
	}
}

func TestVerifySignatureWithoutSecret(t *testing.T) {
	_, svc := newPaddleFixture("")
	body := []byte(`{}`)
	if err := svc.VerifySignature(body, sign("", body)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected every delivery to be rejected without a secret, got %v", err)
	}
}

func TestSubscriptionCreatedAppliesAndRecordsLedger(t *testing.T) {
	store, svc := newPaddleFixture(testWebhookSecret)
	body := []byte(subscriptionCreated)

	if err := svc.HandleWebhook(context.Background(), body, sign(testWebhookSecret, body)); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}
	u, _ := store.Users.GetUserByID(context.Background(), "u1")
	if !u.IsPremium || u.SubscriptionStatus != model.SubscriptionStatusActive {
		t.Fatalf("user not upgraded: %+v", u)
	}
	if u.SubscriptionID == nil || *u.SubscriptionID != "sub_01" || u.SubscriptionEndDate == nil {
		t.Fatalf("subscription fields not set: %+v", u)
	}
	ledger, _ := store.Subscriptions.ListSubscriptionsByUser(context.Background(), "u1", 10)
	if len(ledger) != 1 || ledger[0].PlanType != "pri_monthly" || ledger[0].AmountCents != 999 {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
}

type unknownUserRepo struct {
	repository.UserRepository
}

func (unknownUserRepo) ApplySubscriptionUpdate(context.Context, string, model.SubscriptionUpdate) error {
	return repository.ErrNotFound
}

func TestEventForUnknownUserIsAcknowledged(t *testing.T) {
	store := memory.NewStore()
	svc := NewPaddleService(testWebhookSecret, unknownUserRepo{store.Users}, store.Subscriptions, store.WebhookEvents, zerolog.Nop())
	body := []byte(subscriptionCreated)

	if err := svc.HandleWebhook(context.Background(), body, sign(testWebhookSecret, body)); err != nil {
		t.Fatalf("expected unknown user to be acknowledged, got %v", err)
	}
	ledger, _ := store.Subscriptions.ListSubscriptionsByUser(context.Background(), "u1", 10)
	if len(ledger) != 0 {
		t.Fatalf("no ledger rows expected for an unknown user, got %+v", ledger)
	}
}

func TestWrongSecretLeavesUserUntouched(t *testing.T) {
	store, svc := newPaddleFixture(testWebhookSecret)
	body := []byte(subscriptionCreated)

	if err := svc.HandleWebhook(context.Background(), body, sign("wrong", body)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	u, err := store.Users.GetUserByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserByID returned error: %v", err)
	}
	if u.IsPremium || u.SubscriptionStatus != model.SubscriptionStatusFree || u.SubscriptionID != nil {
		t.Fatalf("user changed by a rejected delivery: %+v", u)
	}
}

func TestDuplicateEventIsSkipped(t *testing.T) {
	store, svc := newPaddleFixture(testWebhookSecret)
	body := []byte(subscriptionCreated)
	sig := sign(testWebhookSecret, body)
	_ = svc.HandleWebhook(context.Background(), body, sig)

	// downgrade out of band, then replay the same event
	premium := false
	_ = store.Users.ApplySubscriptionUpdate(context.Background(), "u1", model.SubscriptionUpdate{IsPremium: &premium})
	if err := svc.HandleWebhook(context.Background(), body, sig); err != nil {
		t.Fatalf("duplicate delivery returned error: %v", err)
	}
	u, _ := store.Users.GetUserByID(context.Background(), "u1")
	if u.IsPremium {
		t.Fatal("duplicate event was applied twice")
	}
}

func TestSubscriptionUpdateMapping(t *testing.T) {
	data := paddleData{ID: "sub_1", Status: "paused"}
	upd, status := subscriptionUpdateFor(EventSubscriptionUpdated, data)
	if upd.IsPremium != nil || *upd.Status != "paused" || status != "paused" {
		t.Fatalf("unexpected update for subscription.updated: %+v", upd)
	}
	upd, _ = subscriptionUpdateFor(EventSubscriptionCancelled, data)
	if upd.IsPremium == nil || *upd.IsPremium || *upd.Status != model.SubscriptionStatusCancelled {
		t.Fatalf("unexpected update for subscription.cancelled: %+v", upd)
	}
	upd, _ = subscriptionUpdateFor(EventSubscriptionPastDue, data)
	if *upd.Status != model.SubscriptionStatusPastDue || upd.IsPremium != nil {
		t.Fatalf("unexpected update for subscription.past_due: %+v", upd)
	}
	if upd, _ := subscriptionUpdateFor(EventTransactionCompleted, paddleData{Status: "billed"}); upd != nil {
		t.Fatalf("non-completed transaction should be a no-op, got %+v", upd)
	}
	if upd, _ := subscriptionUpdateFor(EventTransactionCompleted, paddleData{Status: "completed"}); upd == nil || !*upd.IsPremium {
		t.Fatal("completed transaction should grant premium")
	}
}

func TestUnhandledAndAnonymousEventsAreAcknowledged(t *testing.T) {
	store, svc := newPaddleFixture(testWebhookSecret)
	for _, body := range [][]byte{
		[]byte(`{"event_id":"evt_a","event_type":"customer.created","data":{}}`),
		[]byte(`{"event_id":"evt_b","event_type":"subscription.created","data":{"id":"sub_x"}}`),
	} {
		if err := svc.HandleWebhook(context.Background(), body, sign(testWebhookSecret, body)); err != nil {
			t.Fatalf("HandleWebhook(%s) returned error: %v", body, err)
		}
	}
	ledger, _ := store.Subscriptions.ListSubscriptionsByUser(context.Background(), "", 10)
	if len(ledger) != 0 {
		t.Fatalf("no ledger rows expected, got %+v", ledger)
	}
}

func TestMalformedPayload(t *testing.T) {
	_, svc := newPaddleFixture(testWebhookSecret)
	body := []byte(`{not json`)
	if err := svc.HandleWebhook(context.Background(), body, sign(testWebhookSecret, body)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
