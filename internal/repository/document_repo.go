package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studyflow/internal/model"
)

// DocumentRepository persists documents and guards their status transitions.
// Every transition method only matches rows in the expected source status and
// returns ErrInvalidTransition otherwise.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, d *model.Document) error
	GetDocumentByID(ctx context.Context, id string) (*model.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string, limit int) ([]model.Document, error)
	MarkExtracted(ctx context.Context, id, text string) error
	MarkSummarized(ctx context.Context, id, summary string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, details model.ErrorDetails) error
}

type documentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) DocumentRepository {
	return &documentRepo{db: db}
}

const documentColumns = `id, user_id, title, file_name, file_url, storage_key, file_size, content_type,
	extracted_text, summary, processing_status, error_details, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Title,
		&d.FileName,
		&d.FileURL,
		&d.StorageKey,
		&d.FileSize,
		&d.ContentType,
		&d.ExtractedText,
		&d.Summary,
		&d.ProcessingStatus,
		&d.ErrorDetails,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) CreateDocument(ctx context.Context, d *model.Document) error {
	query := `
		INSERT INTO documents (user_id, title, file_name, file_url, storage_key, file_size, content_type, processing_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	if d.ProcessingStatus == "" {
		d.ProcessingStatus = model.StatusPending
	}
	err := r.db.QueryRowContext(ctx, query,
		d.UserID, d.Title, d.FileName, d.FileURL, d.StorageKey, d.FileSize, d.ContentType, d.ProcessingStatus,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", translate(err))
	}
	return nil
}

func (r *documentRepo) GetDocumentByID(ctx context.Context, id string) (*model.Document, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return d, nil
}

func (r *documentRepo) ListDocumentsByUser(ctx context.Context, userID string, limit int) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	documents := []model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		documents = append(documents, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return documents, nil
}

func (r *documentRepo) transition(ctx context.Context, id, from, to, set string, args ...any) error {
	query := `UPDATE documents SET processing_status = $2, updated_at = NOW()` + set + `
		WHERE id = $1 AND processing_status = $3`
	params := append([]any{id, to, from}, args...)
	res, err := r.db.ExecContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("move document %s from %s to %s: %w", id, from, to, err)
	}
	if err := requireRow(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidTransition
		}
		return err
	}
	return nil
}

func (r *documentRepo) MarkExtracted(ctx context.Context, id, text string) error {
	return r.transition(ctx, id, model.StatusPending, model.StatusExtracted, `, extracted_text = $4`, text)
}

func (r *documentRepo) MarkSummarized(ctx context.Context, id, summary string) error {
	return r.transition(ctx, id, model.StatusExtracted, model.StatusSummarized, `, summary = $4`, summary)
}

func (r *documentRepo) MarkCompleted(ctx context.Context, id string) error {
	return r.transition(ctx, id, model.StatusSummarized, model.StatusCompleted, "")
}

func (r *documentRepo) MarkFailed(ctx context.Context, id string, details model.ErrorDetails) error {
	query := `
		UPDATE documents
		SET processing_status = $2, error_details = $3, updated_at = NOW()
		WHERE id = $1 AND processing_status NOT IN ($4, $2)`
	res, err := r.db.ExecContext(ctx, query, id, model.StatusFailed, details, model.StatusCompleted)
	if err != nil {
		return fmt.Errorf("mark document %s failed: %w", id, err)
	}
	if err := requireRow(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidTransition
		}
		return err
	}
	return nil
}
