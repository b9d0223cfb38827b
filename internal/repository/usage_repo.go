package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studyflow/internal/model"
)

// UsageRepository couples metered actions with the user's usage counter.
type UsageRepository interface {
	// RecordStory atomically re-checks the user's story count, inserts the story
	// and increments stories_generated. A maxStories of 0 means unlimited.
	// Returns ErrStoryLimitReached when the count is already at the limit.
	RecordStory(ctx context.Context, s *model.Story, maxStories int) (int, error)
}

type usageRepo struct {
	db *sql.DB
}

// NewUsageRepo creates a new UsageRepository.
func NewUsageRepo(db *sql.DB) UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) RecordStory(ctx context.Context, s *model.Story, maxStories int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction for story usage: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var count int
	const countQ = `SELECT stories_generated FROM user_profiles WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, countQ, s.UserID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("counting stories for user %s: %w", s.UserID, ErrNotFound)
		}
		return 0, fmt.Errorf("counting stories for user %s: %w", s.UserID, err)
	}
	if maxStories > 0 && count >= maxStories {
		return count, ErrStoryLimitReached
	}

	const insertQ = `
		INSERT INTO stories (user_id, input_text, output_story, narration_mode, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, insertQ, s.UserID, s.InputText, s.OutputStory, s.NarrationMode, s.Source).Scan(&s.ID, &s.CreatedAt); err != nil {
		return count, fmt.Errorf("recording story for user %s: %w", s.UserID, err)
	}
	const bumpQ = `UPDATE user_profiles SET stories_generated = stories_generated + 1, updated_at = NOW() WHERE id = $1 RETURNING stories_generated`
	if err := tx.QueryRowContext(ctx, bumpQ, s.UserID).Scan(&count); err != nil {
		return count, fmt.Errorf("incrementing stories for user %s: %w", s.UserID, err)
	}
	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("committing story for user %s: %w", s.UserID, err)
	}
	return count, nil
}
