package service

import (
	"context"
	"fmt"
	"strings"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/rs/zerolog"
)

type UserService interface {
	// EnsureUser returns the profile for id, creating a free-tier profile on first sight.
	EnsureUser(ctx context.Context, id, email string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) EnsureUser(ctx context.Context, id, email string) (*model.User, error) {
	if email == "" {
		email = id + "@demo.com"
	}
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	u, err := s.userRepo.CreateUser(ctx, model.NewFreeUser(id, email, name))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("Failed to ensure user profile")
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
