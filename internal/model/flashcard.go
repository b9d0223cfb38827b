package model

import "time"

// Flashcard difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether d is a known difficulty level.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Flashcard is a single question/answer card derived from a document.
type Flashcard struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Front      string    `db:"front" json:"front"`
	Back       string    `db:"back" json:"back"`
	Hint       *string   `db:"hint" json:"hint,omitempty"`
	Difficulty string    `db:"difficulty" json:"difficulty"`
	Category   *string   `db:"category" json:"category,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// FlashcardDraft is a card produced by an authoring step before it is persisted.
type FlashcardDraft struct {
	Front      string  `json:"front"`
	Back       string  `json:"back"`
	Hint       *string `json:"hint,omitempty"`
	Difficulty string  `json:"difficulty"`
	Category   *string `json:"category,omitempty"`
}
