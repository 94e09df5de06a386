package handler

import (
	"context"
	"time"

	"simsync/internal/api/v1/dto"
	"simsync/internal/api/v1/operation"
	"simsync/internal/middleware"
	"simsync/internal/model"
	"simsync/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// AuthHandler implements Huma-based identity and profile operations
type AuthHandler struct {
	subscriptionService service.SubscriptionService
	now                 func() time.Time
	logger              zerolog.Logger
}

func NewAuthHandler(subscriptionService service.SubscriptionService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		subscriptionService: subscriptionService,
		now:                 time.Now,
		logger:              logger,
	}
}

// Helper to extract the caller from context (injected by auth middleware)
func identityFromContext(ctx context.Context) (*model.Identity, error) {
	id, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}
	return id, nil
}

// requireSelf returns the caller when it is userID.
func requireSelf(ctx context.Context, userID string) (*model.Identity, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if id.UID != userID {
		return nil, huma.Error403Forbidden("Access denied")
	}
	return id, nil
}

// Verify returns the caller's profile, creating it on first sign-in
func (h *AuthHandler) Verify(ctx context.Context, input *operation.VerifyInput) (*operation.VerifyOutput, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user := h.subscriptionService.GetOrCreate(ctx, id)
	return &operation.VerifyOutput{Body: dto.NewUserProfileDTO(user, id)}, nil
}

// GetUserInfo returns the stored profile of the caller
func (h *AuthHandler) GetUserInfo(ctx context.Context, input *operation.GetUserInfoInput) (*operation.GetUserInfoOutput, error) {
	id, err := requireSelf(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	user, err := h.subscriptionService.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, toAPIError(h.logger, err, "User not found")
	}
	return &operation.GetUserInfoOutput{Body: dto.NewUserProfileDTO(user, id)}, nil
}

// UpgradeSubscription moves the caller onto the premium tier
func (h *AuthHandler) UpgradeSubscription(ctx context.Context, input *operation.UpgradeSubscriptionInput) (*operation.UpgradeSubscriptionOutput, error) {
	if _, err := requireSelf(ctx, input.UserID); err != nil {
		return nil, err
	}
	user, err := h.subscriptionService.Upgrade(ctx, input.UserID)
	if err != nil {
		return nil, toAPIError(h.logger, err, "Failed to upgrade subscription")
	}
	return &operation.UpgradeSubscriptionOutput{
		Body: dto.UpgradeResponseDTO{
			Message:          "Subscription upgraded to Premium!",
			SubscriptionTier: string(user.SubscriptionTier),
			StorageLimit:     user.StorageLimitMB,
		},
	}, nil
}

// Test answers without authentication so clients can probe the API
func (h *AuthHandler) Test(ctx context.Context, input *operation.AuthTestInput) (*operation.AuthTestOutput, error) {
	return &operation.AuthTestOutput{
		Body: dto.TestResponseDTO{
			Message:   "Backend is working!",
			Timestamp: h.now().UTC().Format(time.RFC3339),
		},
	}, nil
}
