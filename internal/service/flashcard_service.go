package service

import (
	"context"
	"fmt"
	"strings"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/rs/zerolog"
)

const flashcardListLimit = 100

type CreateFlashcardInput struct {
	DocumentID string
	Front      string
	Back       string
	Hint       *string
	Difficulty string
	Category   *string
}

type FlashcardService interface {
	Create(ctx context.Context, userID string, in CreateFlashcardInput) (*model.Flashcard, error)
	// List returns the caller's cards, scoped to one document when documentID is set.
	List(ctx context.Context, userID, documentID string) ([]model.Flashcard, error)
}

type flashcardService struct {
	repo   repository.FlashcardRepository
	docs   DocumentService
	logger zerolog.Logger
}

func NewFlashcardService(repo repository.FlashcardRepository, docs DocumentService, logger zerolog.Logger) FlashcardService {
	return &flashcardService{
		repo:   repo,
		docs:   docs,
		logger: logger.With().Str("service", "FlashcardService").Logger(),
	}
}

func (s *flashcardService) Create(ctx context.Context, userID string, in CreateFlashcardInput) (*model.Flashcard, error) {
	front, back := strings.TrimSpace(in.Front), strings.TrimSpace(in.Back)
	if in.DocumentID == "" || front == "" || back == "" {
		return nil, ErrMissingFields
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	if !model.ValidDifficulty(difficulty) {
		return nil, ErrInvalidDifficulty
	}

	doc, err := s.docs.Get(ctx, userID, in.DocumentID)
	if err != nil {
		return nil, err
	}

	card := &model.Flashcard{
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		Front:      front,
		Back:       back,
		Hint:       in.Hint,
		Difficulty: difficulty,
		Category:   in.Category,
	}
	if err := s.repo.CreateFlashcard(ctx, card); err != nil {
		s.logger.Error().Err(err).Str("document_id", doc.ID).Msg("Failed to create flashcard")
		return nil, fmt.Errorf("create flashcard: %w", err)
	}
	return card, nil
}

func (s *flashcardService) List(ctx context.Context, userID, documentID string) ([]model.Flashcard, error) {
	if documentID == "" {
		return s.repo.ListFlashcardsByUser(ctx, userID, flashcardListLimit)
	}
	if _, err := s.docs.Get(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.repo.ListFlashcardsByDocument(ctx, documentID, userID, flashcardListLimit)
}
