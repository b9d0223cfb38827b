package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Store kinds.
const (
	KindPostgres = "postgres"
	KindMemory   = "memory"
)

// HealthChecker probes the backing store.
type HealthChecker interface {
	Ping(ctx context.Context) error
	// ProbeTables verifies that every application table is readable.
	ProbeTables(ctx context.Context) error
}

// Store bundles one implementation of every repository. It is selected once
// at process start and shared by all handlers and workers.
type Store struct {
	Kind          string
	Users         UserRepository
	Usage         UsageRepository
	Documents     DocumentRepository
	Flashcards    FlashcardRepository
	StudySessions StudySessionRepository
	Stories       StoryRepository
	Subscriptions SubscriptionRepository
	WebhookEvents WebhookEventRepository
	DeadLetters   DLQRepository
	Health        HealthChecker
}

// NewPostgresStore builds a Store over db.
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Kind:          KindPostgres,
		Users:         NewUserRepo(db),
		Usage:         NewUsageRepo(db),
		Documents:     NewDocumentRepo(db),
		Flashcards:    NewFlashcardRepo(db),
		StudySessions: NewStudySessionRepo(db),
		Stories:       NewStoryRepo(db),
		Subscriptions: NewSubscriptionRepo(db),
		WebhookEvents: NewWebhookEventRepo(db),
		DeadLetters:   NewDLQRepository(db),
		Health:        &pgHealth{db: db},
	}
}

// Tables lists every table the application reads or writes.
var Tables = []string{
	"user_profiles",
	"documents",
	"flashcards",
	"study_sessions",
	"stories",
	"subscriptions",
	"webhook_events",
	"dead_letter_messages",
}

type pgHealth struct {
	db *sql.DB
}

func (h *pgHealth) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

func (h *pgHealth) ProbeTables(ctx context.Context) error {
	for _, table := range Tables {
		// table names come from the fixed list above
		rows, err := h.db.QueryContext(ctx, "SELECT 1 FROM "+table+" LIMIT 1")
		if err != nil {
			return fmt.Errorf("probe table %s: %w", table, err)
		}
		rows.Close()
	}
	return nil
}
