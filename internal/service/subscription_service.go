package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"

	"github.com/rs/zerolog"
)

// SubscriptionService owns the user profile and its tier.
type SubscriptionService interface {
	// GetOrCreate never fails; store errors are logged and masked with a default basic profile.
	GetOrCreate(ctx context.Context, identity *model.Identity) *model.User
	GetUser(ctx context.Context, userID string) (*model.User, error)
	Upgrade(ctx context.Context, userID string) (*model.User, error)
	Cancel(ctx context.Context, userID string) (*model.User, error)
}

type subscriptionService struct {
	repo   repository.UserRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
func NewSubscriptionService(repo repository.UserRepository, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) GetOrCreate(ctx context.Context, identity *model.Identity) *model.User {
	u, err := s.repo.GetUserByID(ctx, identity.UID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", identity.UID).Msg("Failed to fetch user, using default profile")
		return model.NewBasicUser(identity.UID, identity.Email, identity.DisplayName(), s.now())
	}
	if u != nil {
		return u
	}

	u = model.NewBasicUser(identity.UID, identity.Email, identity.DisplayName(), s.now())
	if err := s.repo.SaveUser(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("user_id", identity.UID).Msg("Failed to create user profile, using default profile")
	} else {
		s.logger.Info().Str("user_id", identity.UID).Msg("Created basic user profile")
	}
	return u
}

func (s *subscriptionService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch user")
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if u == nil {
		return nil, newError(ErrNotFound, "User not found")
	}
	return u, nil
}

func (s *subscriptionService) Upgrade(ctx context.Context, userID string) (*model.User, error) {
	return s.transition(ctx, userID, (*model.User).Upgrade, "upgrade")
}

func (s *subscriptionService) Cancel(ctx context.Context, userID string) (*model.User, error) {
	return s.transition(ctx, userID, (*model.User).Cancel, "cancel")
}

// transition applies change to the stored profile, creating the profile first
// when the user has never signed in.
func (s *subscriptionService) transition(ctx context.Context, userID string, change func(*model.User, time.Time), action string) (*model.User, error) {
	log := s.logger.With().Str("user_id", userID).Str("action", action).Logger()
	now := s.now()

	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch user for subscription change")
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if u == nil {
		u = model.NewBasicUser(userID, "", "", now)
		change(u, now)
		if err := s.repo.SaveUser(ctx, u); err != nil {
			log.Error().Err(err).Msg("Failed to create user for subscription change")
			return nil, fmt.Errorf("creating user: %w", err)
		}
		log.Info().Str("tier", string(u.SubscriptionTier)).Msg("Subscription changed for new user")
		return u, nil
	}

	change(u, now)
	if err := s.repo.UpdateSubscription(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		log.Error().Err(err).Msg("Failed to update subscription")
		return nil, fmt.Errorf("updating subscription: %w", err)
	}
	log.Info().Str("tier", string(u.SubscriptionTier)).Msg("Subscription changed")
	return u, nil
}
