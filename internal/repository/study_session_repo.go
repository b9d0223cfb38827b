package repository

import (
	"context"
	"database/sql"
	"fmt"

	"studyflow/internal/model"
)

type StudySessionRepository interface {
	CreateStudySession(ctx context.Context, s *model.StudySession) error
	ListStudySessionsByUser(ctx context.Context, userID string, limit int) ([]model.StudySession, error)
}

type studySessionRepo struct {
	db *sql.DB
}

func NewStudySessionRepo(db *sql.DB) StudySessionRepository {
	return &studySessionRepo{db: db}
}

func (r *studySessionRepo) CreateStudySession(ctx context.Context, s *model.StudySession) error {
	query := `
		INSERT INTO study_sessions (user_id, document_id, session_type, cards_studied, correct_answers, session_duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.DocumentID, s.SessionType, s.CardsStudied, s.CorrectAnswers, s.SessionDuration,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create study session: %w", translate(err))
	}
	return nil
}

func (r *studySessionRepo) ListStudySessionsByUser(ctx context.Context, userID string, limit int) ([]model.StudySession, error) {
	query := `
		SELECT id, user_id, document_id, session_type, cards_studied, correct_answers, session_duration, created_at
		FROM study_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query study sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.StudySession{}
	for rows.Next() {
		var s model.StudySession
		if err := rows.Scan(&s.ID, &s.UserID, &s.DocumentID, &s.SessionType, &s.CardsStudied, &s.CorrectAnswers, &s.SessionDuration, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan study session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}
