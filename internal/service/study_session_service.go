package service

import (
	"context"
	"fmt"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/rs/zerolog"
)

const defaultSessionType = "flashcards"

type CreateStudySessionInput struct {
	DocumentID      *string
	SessionType     string
	CardsStudied    int
	CorrectAnswers  int
	SessionDuration int
}

type StudySessionService interface {
	Create(ctx context.Context, userID string, in CreateStudySessionInput) (*model.StudySession, error)
	List(ctx context.Context, userID string, limit int) ([]model.StudySession, error)
}

type studySessionService struct {
	repo   repository.StudySessionRepository
	docs   DocumentService
	logger zerolog.Logger
}

func NewStudySessionService(repo repository.StudySessionRepository, docs DocumentService, logger zerolog.Logger) StudySessionService {
	return &studySessionService{
		repo:   repo,
		docs:   docs,
		logger: logger.With().Str("service", "StudySessionService").Logger(),
	}
}

func (s *studySessionService) Create(ctx context.Context, userID string, in CreateStudySessionInput) (*model.StudySession, error) {
	if in.CardsStudied < 0 || in.CorrectAnswers < 0 || in.SessionDuration < 0 || in.CorrectAnswers > in.CardsStudied {
		return nil, ErrInvalidSession
	}
	if in.DocumentID != nil && *in.DocumentID != "" {
		if _, err := s.docs.Get(ctx, userID, *in.DocumentID); err != nil {
			return nil, err
		}
	} else {
		in.DocumentID = nil
	}
	sessionType := in.SessionType
	if sessionType == "" {
		sessionType = defaultSessionType
	}

	session := &model.StudySession{
		UserID:          userID,
		DocumentID:      in.DocumentID,
		SessionType:     sessionType,
		CardsStudied:    in.CardsStudied,
		CorrectAnswers:  in.CorrectAnswers,
		SessionDuration: in.SessionDuration,
	}
	if err := s.repo.CreateStudySession(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record study session")
		return nil, fmt.Errorf("create study session: %w", err)
	}
	return session, nil
}

func (s *studySessionService) List(ctx context.Context, userID string, limit int) ([]model.StudySession, error) {
	return s.repo.ListStudySessionsByUser(ctx, userID, limit)
}
