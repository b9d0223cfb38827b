package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studyflow/internal/model"
)

type StoryRepository interface {
	GetStoryByID(ctx context.Context, id string) (*model.Story, error)
	ListStoriesByUser(ctx context.Context, userID string, limit int) ([]model.Story, error)
	SetAudioURL(ctx context.Context, id, url string) error
}

type storyRepo struct {
	db *sql.DB
}

func NewStoryRepo(db *sql.DB) StoryRepository {
	return &storyRepo{db: db}
}

const storyColumns = `id, user_id, input_text, output_story, narration_mode, source, audio_url, created_at`

func scanStory(row interface{ Scan(...any) error }) (*model.Story, error) {
	var s model.Story
	if err := row.Scan(&s.ID, &s.UserID, &s.InputText, &s.OutputStory, &s.NarrationMode, &s.Source, &s.AudioURL, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *storyRepo) GetStoryByID(ctx context.Context, id string) (*model.Story, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	s, err := scanStory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get story %s: %w", id, err)
	}
	return s, nil
}

func (r *storyRepo) ListStoriesByUser(ctx context.Context, userID string, limit int) ([]model.Story, error) {
	query := `SELECT ` + storyColumns + `
		FROM stories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	stories := []model.Story{}
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		stories = append(stories, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return stories, nil
}

func (r *storyRepo) SetAudioURL(ctx context.Context, id, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE stories SET audio_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("set audio url for story %s: %w", id, err)
	}
	return requireRow(res)
}
