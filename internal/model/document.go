package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Document processing states.
const (
	StatusPending    = "pending"
	StatusExtracted  = "extracted"
	StatusSummarized = "summarized"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

var statusRank = map[string]int{
	StatusPending:    0,
	StatusExtracted:  1,
	StatusSummarized: 2,
	StatusCompleted:  3,
}

// IsTerminal reports whether status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// CanTransition reports whether a document may move from one status to another.
// Forward moves advance exactly one step; failed is reachable from any
// non-terminal status.
func CanTransition(from, to string) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusFailed {
		return true
	}
	f, ok1 := statusRank[from]
	t, ok2 := statusRank[to]
	return ok1 && ok2 && t == f+1
}

// Document represents an uploaded study document.
type Document struct {
	ID               string       `db:"id" json:"id"`
	UserID           string       `db:"user_id" json:"user_id"`
	Title            string       `db:"title" json:"title"`
	FileName         string       `db:"file_name" json:"file_name"`
	FileURL          string       `db:"file_url" json:"file_url"`
	StorageKey       string       `db:"storage_key" json:"storage_key"`
	FileSize         int64        `db:"file_size" json:"file_size"`
	ContentType      string       `db:"content_type" json:"content_type"`
	ExtractedText    *string      `db:"extracted_text" json:"extracted_text,omitempty"`
	Summary          *string      `db:"summary" json:"summary,omitempty"`
	ProcessingStatus string       `db:"processing_status" json:"processing_status"`
	ErrorDetails     ErrorDetails `db:"error_details" json:"-"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// ErrorDetails is a map for storing failure details (JSONB)
type ErrorDetails map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (e ErrorDetails) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan implements the sql.Scanner interface for JSONB
func (e *ErrorDetails) Scan(value interface{}) error {
	if value == nil {
		*e = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ErrorDetails", value)
	}
	return json.Unmarshal(raw, e)
}
