package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("forbidden")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrStoryNotFound       = errors.New("story not found")
	ErrMissingFields       = errors.New("missing required fields")
	ErrNoFile              = errors.New("no file provided")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidDifficulty   = errors.New("invalid difficulty")
	ErrEmptyInput          = errors.New("input text is required")
	ErrInvalidNarration    = errors.New("invalid narration mode")
	ErrStoryLimitReached   = errors.New("story limit reached")
	ErrLLMNotConfigured    = errors.New("language model not configured")
	ErrAudioFailed         = errors.New("audio generation failed")
	ErrMissingSignature    = errors.New("missing signature")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInvalidPayload      = errors.New("invalid webhook payload")
	ErrInvalidSession      = errors.New("invalid study session")
)

// InputTooLongError reports narration input over the caller's plan ceiling.
type InputTooLongError struct {
	Premium bool
	Limit   int
	Length  int
}

func (e *InputTooLongError) Error() string {
	plan := "Free"
	if e.Premium {
		plan = "Premium"
	}
	return fmt.Sprintf("Text too long. %s users are limited to %d characters. Your text is %d characters.", plan, e.Limit, e.Length)
}

// GenerationError wraps a failed language-model call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "story generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }
