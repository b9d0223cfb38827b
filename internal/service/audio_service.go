package service

import (
	"context"
	"fmt"

	"studyflow/internal/repository"
	"studyflow/internal/storage"
	"studyflow/internal/tts"

	"github.com/rs/zerolog"
)

// BrowserTTS tells the client to speak the story itself.
const BrowserTTS = "browser-tts"

const (
	audioGeneratedMessage = "Audio generated successfully"
	browserTTSMessage     = "Using browser text-to-speech (ElevenLabs not configured)"
)

type AudioResult struct {
	AudioURL string
	Message  string
}

type AudioService interface {
	Generate(ctx context.Context, userID, storyID string) (*AudioResult, error)
}

type audioService struct {
	stories   StoryService
	repo      repository.StoryRepository
	primary   tts.Synthesizer
	secondary tts.Synthesizer
	store     storage.ObjectStore
	bucket    string
	logger    zerolog.Logger
}

// NewAudioService creates an AudioService. A nil primary synthesizer selects
// browser speech; a nil secondary disables the fallback.
func NewAudioService(
	stories StoryService,
	repo repository.StoryRepository,
	primary, secondary tts.Synthesizer,
	store storage.ObjectStore,
	bucket string,
	logger zerolog.Logger,
) AudioService {
	return &audioService{
		stories:   stories,
		repo:      repo,
		primary:   primary,
		secondary: secondary,
		store:     store,
		bucket:    bucket,
		logger:    logger.With().Str("service", "AudioService").Logger(),
	}
}

func (s *audioService) Generate(ctx context.Context, userID, storyID string) (*AudioResult, error) {
	story, err := s.stories.Get(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}
	if s.primary == nil {
		return &AudioResult{AudioURL: BrowserTTS, Message: browserTTSMessage}, nil
	}

	audio, err := s.primary.Synthesize(ctx, story.OutputStory)
	if err != nil {
		s.logger.Warn().Err(err).Str("story_id", storyID).Str("vendor", s.primary.Name()).Msg("Primary speech synthesis failed")
		if s.secondary == nil {
			return nil, fmt.Errorf("%w: %v", ErrAudioFailed, err)
		}
		audio, err = s.secondary.Synthesize(ctx, story.OutputStory)
		if err != nil {
			s.logger.Error().Err(err).Str("story_id", storyID).Str("vendor", s.secondary.Name()).Msg("Fallback speech synthesis failed")
			return nil, fmt.Errorf("%w: %v", ErrAudioFailed, err)
		}
	}

	key := fmt.Sprintf("stories/%s/%s.%s", userID, storyID, audio.Extension)
	url, err := s.store.Put(ctx, s.bucket, key, audio.Data, audio.ContentType)
	if err != nil {
		s.logger.Error().Err(err).Str("story_id", storyID).Msg("Failed to upload audio")
		return nil, fmt.Errorf("upload audio: %w", err)
	}
	if err := s.repo.SetAudioURL(ctx, storyID, url); err != nil {
		return nil, fmt.Errorf("save audio url: %w", err)
	}
	s.logger.Info().Str("story_id", storyID).Str("audio_url", url).Msg("Audio generated")
	return &AudioResult{AudioURL: url, Message: audioGeneratedMessage}, nil
}
