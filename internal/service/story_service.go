package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"studyflow/internal/llm"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/rs/zerolog"
)

const storyListLimit = 10

// StoryLimits are the plan ceilings applied to narration.
type StoryLimits struct {
	FreeStories       int
	FreeInputChars    int
	PremiumInputChars int
}

type StoryService interface {
	// Generate narrates inputText in mode and records the story against the caller's quota.
	Generate(ctx context.Context, userID, inputText, mode string) (*model.Story, error)
	List(ctx context.Context, userID string) ([]model.Story, error)
	// Get returns the story when userID owns it.
	Get(ctx context.Context, userID, storyID string) (*model.Story, error)
}

type storyService struct {
	users   UserService
	usage   repository.UsageRepository
	stories repository.StoryRepository
	llm     llm.Client
	limits  StoryLimits
	logger  zerolog.Logger
}

// NewStoryService creates a StoryService. client may be nil when no language
// model is configured; generation then fails without a network call.
func NewStoryService(
	users UserService,
	usage repository.UsageRepository,
	stories repository.StoryRepository,
	client llm.Client,
	limits StoryLimits,
	logger zerolog.Logger,
) StoryService {
	return &storyService{
		users:   users,
		usage:   usage,
		stories: stories,
		llm:     client,
		limits:  limits,
		logger:  logger.With().Str("service", "StoryService").Logger(),
	}
}

func (s *storyService) Generate(ctx context.Context, userID, inputText, mode string) (*model.Story, error) {
	input := strings.TrimSpace(inputText)
	if input == "" {
		return nil, ErrEmptyInput
	}
	mode, systemPrompt, ok := narrationPrompt(mode)
	if !ok {
		return nil, ErrInvalidNarration
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxChars := s.limits.FreeInputChars
	if u.IsPremium {
		maxChars = s.limits.PremiumInputChars
	}
	if n := utf8.RuneCountInString(input); n > maxChars {
		return nil, &InputTooLongError{Premium: u.IsPremium, Limit: maxChars, Length: n}
	}
	quota := 0
	if !u.IsPremium {
		quota = s.limits.FreeStories
		if u.StoriesGenerated >= quota {
			return nil, ErrStoryLimitReached
		}
	}

	if s.llm == nil {
		return nil, &GenerationError{Err: ErrLLMNotConfigured}
	}
	s.logger.Debug().Str("user_id", userID).Str("narration_mode", mode).Msg("Generating story")
	output, err := s.llm.Generate(ctx, systemPrompt, userNarrationInput(input))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Story generation failed")
		return nil, &GenerationError{Err: err}
	}

	story := &model.Story{
		UserID:        userID,
		InputText:     input,
		OutputStory:   output,
		NarrationMode: mode,
		Source:        model.StorySourceAPI,
	}
	count, err := s.usage.RecordStory(ctx, story, quota)
	if errors.Is(err, repository.ErrStoryLimitReached) {
		return nil, ErrStoryLimitReached
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save story")
		return nil, fmt.Errorf("save story: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("story_id", story.ID).Int("stories_generated", count).Msg("Story saved")
	return story, nil
}

func (s *storyService) List(ctx context.Context, userID string) ([]model.Story, error) {
	return s.stories.ListStoriesByUser(ctx, userID, storyListLimit)
}

func (s *storyService) Get(ctx context.Context, userID, storyID string) (*model.Story, error) {
	story, err := s.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}
	if story.UserID != userID {
		return nil, ErrForbidden
	}
	return story, nil
}
