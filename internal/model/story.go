package model

import "time"

// Narration modes.
const (
	NarrationFocus      = "focus"
	NarrationBalanced   = "balanced"
	NarrationEngaging   = "engaging"
	NarrationDocTheatre = "doc_theatre"
)

// Story sources.
const (
	StorySourceAPI = "api"
	StorySourcePDF = "pdf"
)

// Story is a generated narration of user-supplied text.
type Story struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	InputText     string    `db:"input_text" json:"input_text"`
	OutputStory   string    `db:"output_story" json:"output_story"`
	NarrationMode string    `db:"narration_mode" json:"narration_mode"`
	Source        string    `db:"source" json:"source"`
	AudioURL      *string   `db:"audio_url" json:"audio_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
