package operation

import "simsync/internal/api/v1/dto"

type VerifyInput struct {
	// No input needed - caller comes from auth context
}

type VerifyOutput struct {
	Body dto.UserProfileDTO `json:"body"`
}

type GetUserInfoInput struct {
	UserID string `path:"userId" doc:"User ID, must be the caller's own"`
}

type GetUserInfoOutput struct {
	Body dto.UserProfileDTO `json:"body"`
}

type UpgradeSubscriptionInput struct {
	UserID string `path:"userId" doc:"User ID, must be the caller's own"`
}

type UpgradeSubscriptionOutput struct {
	Body dto.UpgradeResponseDTO `json:"body"`
}

type AuthTestInput struct{}

type AuthTestOutput struct {
	Body dto.TestResponseDTO `json:"body"`
}
