package service

import (
	"context"
	"strings"
	"testing"

	"studyflow/internal/model"
)

func TestParseFlashcardDraftsFencedJSON(t *testing.T) {
	raw := "```json\n[{\"front\":\"What is a cell?\",\"back\":\"The basic unit of life\",\"difficulty\":\"easy\"}," +
		"{\"front\":\"\",\"back\":\"dropped\"},{\"front\":\"Mitosis?\",\"back\":\"Cell division\",\"difficulty\":\"extreme\"}]\n```"
	drafts, err := parseFlashcardDrafts(raw)
	if err != nil {
		t.Fatalf("parseFlashcardDrafts returned error: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 usable cards, got %d", len(drafts))
	}
	if drafts[1].Difficulty != model.DifficultyMedium {
		t.Fatalf("unknown difficulty should default to medium, got %q", drafts[1].Difficulty)
	}
}

func TestParseFlashcardDraftsRejectsProse(t *testing.T) {
	if _, err := parseFlashcardDrafts("Sorry, I cannot help with that."); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}

func TestStandInSummarizeTakesLeadingSentences(t *testing.T) {
	text := "First point here. Second point! Third one? Fourth is dropped."
	got, _ := StandInAuthor{}.Summarize(context.Background(), text)
	if got != "First point here. Second point! Third one?" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestStandInFlashcardsFromTermLines(t *testing.T) {
	text := "Glossary\nPhotosynthesis: how plants turn light into energy\nOsmosis - movement of water across a membrane\nno separator here"
	cards, err := StandInAuthor{}.Flashcards(context.Background(), text)
	if err != nil {
		t.Fatalf("Flashcards returned error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d: %+v", len(cards), cards)
	}
	if cards[0].Front != "What is Photosynthesis?" || !strings.HasPrefix(cards[0].Back, "how plants") {
		t.Fatalf("unexpected first card %+v", cards[0])
	}
	if cards[1].Front != "What is Osmosis?" {
		t.Fatalf("unexpected second card %+v", cards[1])
	}
}

func TestStandInFlashcardsFallsBackToSummaryCard(t *testing.T) {
	cards, _ := StandInAuthor{}.Flashcards(context.Background(), "Plain prose without definitions. Another sentence.")
	if len(cards) != 1 || cards[0].Front != "What is this document about?" {
		t.Fatalf("expected a single overview card, got %+v", cards)
	}
}

func TestLLMAuthorFlashcards(t *testing.T) {
	llm := &fakeLLM{out: `[{"front":"Q","back":"A","difficulty":"hard"}]`}
	cards, err := NewLLMAuthor(llm).Flashcards(context.Background(), "content")
	if err != nil {
		t.Fatalf("Flashcards returned error: %v", err)
	}
	if len(cards) != 1 || cards[0].Difficulty != model.DifficultyHard {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if !strings.Contains(llm.system, "Generate 5-10 high-quality flashcards") {
		t.Fatal("flashcard prompt not used as system prompt")
	}
}
