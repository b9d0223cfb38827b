package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"studyflow/internal/llm"
	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/repository/memory"

	"github.com/rs/zerolog"
)

var testStoryLimits = StoryLimits{FreeStories: 10, FreeInputChars: 600, PremiumInputChars: 20000}

func newStoryFixture(client *fakeLLM) (*repository.Store, StoryService) {
	store := memory.NewStore()
	users := NewUserService(store.Users, zerolog.Nop())
	var c llm.Client
	if client != nil {
		c = client
	}
	return store, NewStoryService(users, store.Usage, store.Stories, c, testStoryLimits, zerolog.Nop())
}

func makePremium(t *testing.T, store *repository.Store, userID string) {
	t.Helper()
	premium := true
	if err := store.Users.ApplySubscriptionUpdate(context.Background(), userID, model.SubscriptionUpdate{IsPremium: &premium}); err != nil {
		t.Fatalf("make premium: %v", err)
	}
}

func exhaustFreeStories(t *testing.T, store *repository.Store, userID string) {
	t.Helper()
	for i := 0; i < testStoryLimits.FreeStories; i++ {
		if _, err := store.Usage.RecordStory(context.Background(), &model.Story{UserID: userID, OutputStory: "x"}, 0); err != nil {
			t.Fatalf("seed story: %v", err)
		}
	}
}

func TestGenerateStorySuccess(t *testing.T) {
	client := &fakeLLM{out: "Once upon a time..."}
	store, svc := newStoryFixture(client)

	story, err := svc.Generate(context.Background(), "u1", "  photosynthesis basics  ", "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if story.ID == "" || story.NarrationMode != model.NarrationBalanced || story.InputText != "photosynthesis basics" {
		t.Fatalf("unexpected story %+v", story)
	}
	if client.user != `User input: "photosynthesis basics"` {
		t.Fatalf("unexpected user prompt %q", client.user)
	}
	if client.system != narrationPrompts[model.NarrationBalanced] {
		t.Fatal("balanced prompt not used for empty mode")
	}
	u, _ := store.Users.GetUserByID(context.Background(), "u1")
	if u.StoriesGenerated != 1 {
		t.Fatalf("expected stories_generated=1, got %d", u.StoriesGenerated)
	}
}

func TestGenerateStoryRejectsBadInput(t *testing.T) {
	client := &fakeLLM{out: "story"}
	_, svc := newStoryFixture(client)

	if _, err := svc.Generate(context.Background(), "u1", "   ", "focus"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), "u1", "text", "opera"); !errors.Is(err, ErrInvalidNarration) {
		t.Fatalf("expected ErrInvalidNarration, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("model must not be called for rejected input, got %d calls", client.calls)
	}
}

func TestGenerateStoryLengthCheckPrecedesLimit(t *testing.T) {
	client := &fakeLLM{out: "story"}
	store, svc := newStoryFixture(client)
	exhaustFreeStories(t, store, "u1")

	_, err := svc.Generate(context.Background(), "u1", strings.Repeat("a", 601), "focus")
	var tooLong *InputTooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected InputTooLongError, got %v", err)
	}
	if tooLong.Error() != "Text too long. Free users are limited to 600 characters. Your text is 601 characters." {
		t.Fatalf("unexpected message %q", tooLong.Error())
	}

	if _, err := svc.Generate(context.Background(), "u1", "short", "focus"); !errors.Is(err, ErrStoryLimitReached) {
		t.Fatalf("expected ErrStoryLimitReached, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("model must not be called past the limit, got %d calls", client.calls)
	}
	u, _ := store.Users.GetUserByID(context.Background(), "u1")
	if u.StoriesGenerated != testStoryLimits.FreeStories {
		t.Fatalf("rejected request changed the counter: stories_generated=%d", u.StoriesGenerated)
	}
	stories, err := store.Stories.ListStoriesByUser(context.Background(), "u1", 100)
	if err != nil {
		t.Fatalf("ListStoriesByUser returned error: %v", err)
	}
	if len(stories) != testStoryLimits.FreeStories {
		t.Fatalf("expected %d stories after the limit, got %d", testStoryLimits.FreeStories, len(stories))
	}
}

func TestGenerateStoryPremiumIsUnlimited(t *testing.T) {
	store, svc := newStoryFixture(&fakeLLM{out: "story"})
	exhaustFreeStories(t, store, "u1")
	makePremium(t, store, "u1")

	if _, err := svc.Generate(context.Background(), "u1", strings.Repeat("a", 5000), model.NarrationDocTheatre); err != nil {
		t.Fatalf("premium generation failed: %v", err)
	}
}

func TestGenerateStoryWithoutModel(t *testing.T) {
	_, svc := newStoryFixture(nil)
	_, err := svc.Generate(context.Background(), "u1", "text", "engaging")
	var genErr *GenerationError
	if !errors.As(err, &genErr) || !errors.Is(err, ErrLLMNotConfigured) {
		t.Fatalf("expected GenerationError wrapping ErrLLMNotConfigured, got %v", err)
	}
}

func TestGenerateStoryModelFailure(t *testing.T) {
	store, svc := newStoryFixture(&fakeLLM{err: errors.New("upstream 502")})
	_, err := svc.Generate(context.Background(), "u1", "text", "focus")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	u, _ := store.Users.GetUserByID(context.Background(), "u1")
	if u.StoriesGenerated != 0 {
		t.Fatal("failed generation must not consume quota")
	}
}

func TestGetStoryOwnership(t *testing.T) {
	_, svc := newStoryFixture(&fakeLLM{out: "story"})
	story, _ := svc.Generate(context.Background(), "owner", "text", "focus")

	if _, err := svc.Get(context.Background(), "intruder", story.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner", "nope"); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound, got %v", err)
	}
	list, _ := svc.List(context.Background(), "owner")
	if len(list) != 1 {
		t.Fatalf("expected 1 story, got %d", len(list))
	}
}
