package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"studyflow/internal/llm"
	"studyflow/internal/model"
)

// maxAuthoringInput bounds how much document text is sent to the model.
const maxAuthoringInput = 12000

// Author writes the study material for an extracted document.
type Author interface {
	Summarize(ctx context.Context, text string) (string, error)
	Flashcards(ctx context.Context, text string) ([]model.FlashcardDraft, error)
}

const summaryPrompt = `You are an expert educational content creator. Summarize the provided study material in one to three short paragraphs.
Highlight the most important concepts, definitions and facts. Write plain prose without headings or lists.`

const flashcardPrompt = `You are an expert educational content creator specializing in creating effective flashcards for studying.

Your task is to analyze the provided text and create high-quality flashcards that will help students learn and retain the information effectively.

For each flashcard, create:
1. A clear, concise question on the front
2. A comprehensive, accurate answer on the back
3. An optional hint that provides a clue without giving away the answer
4. A difficulty level (easy, medium, hard)
5. A relevant category/topic

Guidelines:
- Focus on key concepts, definitions, facts, and important details
- Make questions specific and testable
- Ensure answers are accurate and complete
- Avoid trivial or overly obvious questions

Respond with only a JSON array of objects with the keys "front", "back", "hint", "difficulty" and "category".
Generate 5-10 high-quality flashcards from the following content:`

// LLMAuthor authors study material with a language model.
type LLMAuthor struct {
	client llm.Client
}

func NewLLMAuthor(client llm.Client) *LLMAuthor {
	return &LLMAuthor{client: client}
}

func (a *LLMAuthor) Summarize(ctx context.Context, text string) (string, error) {
	out, err := a.client.Generate(ctx, summaryPrompt, truncateRunes(text, maxAuthoringInput))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}

func (a *LLMAuthor) Flashcards(ctx context.Context, text string) ([]model.FlashcardDraft, error) {
	out, err := a.client.Generate(ctx, flashcardPrompt, truncateRunes(text, maxAuthoringInput))
	if err != nil {
		return nil, fmt.Errorf("author flashcards: %w", err)
	}
	drafts, err := parseFlashcardDrafts(out)
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

// parseFlashcardDrafts reads the model's JSON array, tolerating a fenced code block.
func parseFlashcardDrafts(raw string) ([]model.FlashcardDraft, error) {
	raw = strings.TrimSpace(raw)
	if start := strings.IndexByte(raw, '['); start >= 0 {
		if end := strings.LastIndexByte(raw, ']'); end > start {
			raw = raw[start : end+1]
		}
	}
	var drafts []model.FlashcardDraft
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("decode flashcards: %w", err)
	}
	out := drafts[:0]
	for _, d := range drafts {
		d.Front, d.Back = strings.TrimSpace(d.Front), strings.TrimSpace(d.Back)
		if d.Front == "" || d.Back == "" {
			continue
		}
		if !model.ValidDifficulty(d.Difficulty) {
			d.Difficulty = model.DifficultyMedium
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("decode flashcards: no usable cards")
	}
	return out, nil
}

// StandInAuthor is the deterministic author used when no language model is configured.
type StandInAuthor struct{}

var (
	sentenceEnd = regexp.MustCompile(`[.!?](\s+|$)`)
	termLine    = regexp.MustCompile(`^([^:\n]{2,80}?)\s*(?::|\s-\s)\s*(\S.{2,})$`)
)

const (
	standInSentences = 3
	standInMaxCards  = 10
)

// Summarize returns the leading sentences of text.
func (StandInAuthor) Summarize(_ context.Context, text string) (string, error) {
	flat := strings.Join(strings.Fields(text), " ")
	idx := sentenceEnd.FindAllStringIndex(flat, standInSentences)
	if len(idx) == 0 {
		return truncateRunes(flat, 500), nil
	}
	return strings.TrimSpace(truncateRunes(flat[:idx[len(idx)-1][1]], 500)), nil
}

// Flashcards turns "Term: definition" and "Term - definition" lines into cards.
func (a StandInAuthor) Flashcards(ctx context.Context, text string) ([]model.FlashcardDraft, error) {
	var drafts []model.FlashcardDraft
	for _, line := range strings.Split(text, "\n") {
		m := termLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		drafts = append(drafts, model.FlashcardDraft{
			Front:      "What is " + strings.TrimSpace(m[1]) + "?",
			Back:       strings.TrimSpace(m[2]),
			Difficulty: model.DifficultyMedium,
		})
		if len(drafts) == standInMaxCards {
			break
		}
	}
	if len(drafts) == 0 {
		summary, _ := a.Summarize(ctx, text)
		drafts = append(drafts, model.FlashcardDraft{
			Front:      "What is this document about?",
			Back:       summary,
			Difficulty: model.DifficultyEasy,
		})
	}
	return drafts, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	_ Author = (*LLMAuthor)(nil)
	_ Author = StandInAuthor{}
)
