package repository

import (
	"context"
	"database/sql"
	"fmt"

	"studyflow/internal/model"
)

type FlashcardRepository interface {
	CreateFlashcard(ctx context.Context, f *model.Flashcard) error
	ListFlashcardsByDocument(ctx context.Context, documentID, userID string, limit int) ([]model.Flashcard, error)
	ListFlashcardsByUser(ctx context.Context, userID string, limit int) ([]model.Flashcard, error)
	DeleteFlashcardsByDocument(ctx context.Context, documentID string) error
}

type flashcardRepo struct {
	db *sql.DB
}

func NewFlashcardRepo(db *sql.DB) FlashcardRepository {
	return &flashcardRepo{db: db}
}

const flashcardColumns = `id, document_id, user_id, front, back, hint, difficulty, category, created_at, updated_at`

func (r *flashcardRepo) CreateFlashcard(ctx context.Context, f *model.Flashcard) error {
	query := `
		INSERT INTO flashcards (document_id, user_id, front, back, hint, difficulty, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	if f.Difficulty == "" {
		f.Difficulty = model.DifficultyMedium
	}
	err := r.db.QueryRowContext(ctx, query,
		f.DocumentID, f.UserID, f.Front, f.Back, f.Hint, f.Difficulty, f.Category,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create flashcard: %w", translate(err))
	}
	return nil
}

func (r *flashcardRepo) list(ctx context.Context, query string, args ...any) ([]model.Flashcard, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flashcards: %w", err)
	}
	defer rows.Close()

	cards := []model.Flashcard{}
	for rows.Next() {
		var f model.Flashcard
		if err := rows.Scan(
			&f.ID,
			&f.DocumentID,
			&f.UserID,
			&f.Front,
			&f.Back,
			&f.Hint,
			&f.Difficulty,
			&f.Category,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flashcard row: %w", err)
		}
		cards = append(cards, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return cards, nil
}

func (r *flashcardRepo) ListFlashcardsByDocument(ctx context.Context, documentID, userID string, limit int) ([]model.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE document_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3`
	return r.list(ctx, query, documentID, userID, limit)
}

func (r *flashcardRepo) ListFlashcardsByUser(ctx context.Context, userID string, limit int) ([]model.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

func (r *flashcardRepo) DeleteFlashcardsByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete flashcards for document %s: %w", documentID, err)
	}
	return nil
}
