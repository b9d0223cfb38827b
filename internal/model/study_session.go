package model

import "time"

// StudySession records the outcome of one study sitting.
type StudySession struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	DocumentID      *string   `db:"document_id" json:"document_id,omitempty"`
	SessionType     string    `db:"session_type" json:"session_type"`
	CardsStudied    int       `db:"cards_studied" json:"cards_studied"`
	CorrectAnswers  int       `db:"correct_answers" json:"correct_answers"`
	SessionDuration int       `db:"session_duration" json:"session_duration"` // seconds
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
