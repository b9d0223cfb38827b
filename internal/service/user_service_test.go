package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/repository/memory"

	"github.com/rs/zerolog"
)

type missingUserRepo struct{ repository.UserRepository }

func (missingUserRepo) GetUserByID(context.Context, string) (*model.User, error) { return nil, nil }

func TestEnsureUserCreatesFreeProfileOnce(t *testing.T) {
	store := memory.NewStore()
	svc := NewUserService(store.Users, zerolog.Nop())
	ctx := context.Background()

	u, err := svc.EnsureUser(ctx, "u1", "ada@example.com")
	if err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}
	if u.Name != "ada" || u.IsPremium || u.SubscriptionStatus != model.SubscriptionStatusFree {
		t.Fatalf("unexpected profile %+v", u)
	}

	if err := store.Users.ApplySubscriptionUpdate(ctx, "u1", model.SubscriptionUpdate{IsPremium: boolPtr(true)}); err != nil {
		t.Fatalf("ApplySubscriptionUpdate: %v", err)
	}
	again, err := svc.EnsureUser(ctx, "u1", "other@example.com")
	if err != nil {
		t.Fatalf("second EnsureUser returned error: %v", err)
	}
	if !again.IsPremium || again.Email != "ada@example.com" {
		t.Fatalf("existing profile was overwritten: %+v", again)
	}
}

func TestEnsureUserDefaultsDemoEmail(t *testing.T) {
	svc := NewUserService(memory.NewStore().Users, zerolog.Nop())
	u, err := svc.EnsureUser(context.Background(), "demo-1", "")
	if err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}
	if u.Email != "demo-1@demo.com" || u.Name != "demo-1" {
		t.Fatalf("unexpected demo profile %+v", u)
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewUserService(missingUserRepo{}, zerolog.Nop())
	if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSubscriptionStatusIncludesLedger(t *testing.T) {
	store := memory.NewStore()
	users := NewUserService(store.Users, zerolog.Nop())
	svc := NewSubscriptionService(users, store.Subscriptions, zerolog.Nop())
	ctx := context.Background()

	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	subID := "sub_01"
	status := model.SubscriptionStatusActive
	if err := store.Users.ApplySubscriptionUpdate(ctx, "u1", model.SubscriptionUpdate{
		IsPremium:      boolPtr(true),
		Status:         &status,
		SubscriptionID: &subID,
		EndDate:        &end,
	}); err != nil {
		t.Fatalf("ApplySubscriptionUpdate: %v", err)
	}
	if err := store.Subscriptions.UpsertSubscription(ctx, &model.Subscription{
		UserID:         "u1",
		SubscriptionID: subID,
		Status:         status,
		PlanType:       "pri_monthly",
		AmountCents:    999,
	}); err != nil {
		t.Fatalf("UpsertSubscription: %v", err)
	}

	got, err := svc.GetStatus(ctx, "u1")
	if err != nil {
		t.Fatalf("GetStatus returned error: %v", err)
	}
	if !got.IsPremium || got.SubscriptionStatus != status || got.SubscriptionID == nil || *got.SubscriptionID != subID {
		t.Fatalf("unexpected status %+v", got)
	}
	if got.SubscriptionEndDate == nil || !got.SubscriptionEndDate.Equal(end) {
		t.Fatalf("unexpected end date %v", got.SubscriptionEndDate)
	}
	if len(got.Ledger) != 1 || got.Ledger[0].Currency != "USD" {
		t.Fatalf("unexpected ledger %+v", got.Ledger)
	}
}

func boolPtr(b bool) *bool { return &b }
