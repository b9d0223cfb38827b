package service

import (
	"context"
	"time"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/rs/zerolog"
)

// SubscriptionStatus is the caller's plan as seen by the billing screen.
type SubscriptionStatus struct {
	IsPremium           bool
	SubscriptionStatus  string
	SubscriptionID      *string
	SubscriptionEndDate *time.Time
	Ledger              []model.Subscription
}

type SubscriptionService interface {
	GetStatus(ctx context.Context, userID string) (*SubscriptionStatus, error)
}

type subscriptionService struct {
	users  UserService
	repo   repository.SubscriptionRepository
	logger zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
func NewSubscriptionService(users UserService, repo repository.SubscriptionRepository, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		users:  users,
		repo:   repo,
		logger: logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) GetStatus(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.repo.ListSubscriptionsByUser(ctx, userID, 20)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch subscription ledger")
		return nil, err
	}
	return &SubscriptionStatus{
		IsPremium:           u.IsPremium,
		SubscriptionStatus:  u.SubscriptionStatus,
		SubscriptionID:      u.SubscriptionID,
		SubscriptionEndDate: u.SubscriptionEndDate,
		Ledger:              ledger,
	}, nil
}
