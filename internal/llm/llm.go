// Package llm wraps the hosted language models used for narration and
// document authoring.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from language model")

// Client generates text from a system prompt and a user prompt.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options shared by every provider.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
}
