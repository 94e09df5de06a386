package dto

import "simsync/internal/model"

type UserProfileDTO struct {
	UID                string  `json:"uid"`
	Email              string  `json:"email"`
	DisplayName        string  `json:"display_name"`
	SubscriptionTier   string  `json:"subscription_tier"`
	SubscriptionStatus string  `json:"subscription_status"`
	StorageUsed        float64 `json:"storage_used" doc:"Storage used in MB"`
	StorageLimit       int     `json:"storage_limit" doc:"Storage allowance in MB"`
}

// NewUserProfileDTO renders u, filling contact details the profile lacks from id.
func NewUserProfileDTO(u *model.User, id *model.Identity) UserProfileDTO {
	out := UserProfileDTO{
		UID:                u.UserID,
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		SubscriptionTier:   string(u.SubscriptionTier),
		SubscriptionStatus: string(u.SubscriptionStatus),
		StorageUsed:        u.StorageUsedMB(),
		StorageLimit:       u.StorageLimitMB,
	}
	if id != nil {
		if out.Email == "" {
			out.Email = id.Email
		}
		if out.DisplayName == "" {
			out.DisplayName = id.DisplayName()
		}
	}
	return out
}

type UpgradeResponseDTO struct {
	Message          string `json:"message"`
	SubscriptionTier string `json:"subscription_tier"`
	StorageLimit     int    `json:"storage_limit"`
}

type MessageResponseDTO struct {
	Message string `json:"message"`
}

type TestResponseDTO struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type BannerResponseDTO struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type HealthResponseDTO struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
