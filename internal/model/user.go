package model

import (
	"strings"
	"time"
)

// SubscriptionTier is a user's subscription class.
type SubscriptionTier string

const (
	TierBasic   SubscriptionTier = "basic"
	TierPremium SubscriptionTier = "premium"
)

// SubscriptionStatus is the lifecycle state of a user's subscription.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

const (
	BasicStorageLimitMB     = 50
	PremiumStorageLimitMB   = 500
	BasicDailyDownloadLimit = 10

	bytesPerMB = 1024 * 1024
)

// DayKeyLayout formats the keys of User.DailyDownloads.
const DayKeyLayout = "2006-01-02"

// User represents a user profile together with its subscription state
type User struct {
	UserID             string             `db:"user_id" json:"user_id" bson:"_id"`
	Email              string             `db:"email" json:"email" bson:"email"`
	DisplayName        string             `db:"display_name" json:"display_name" bson:"display_name"`
	SubscriptionTier   SubscriptionTier   `db:"subscription_tier" json:"subscription_tier" bson:"subscription_tier"`
	SubscriptionStatus SubscriptionStatus `db:"subscription_status" json:"subscription_status" bson:"subscription_status"`
	StorageUsed        int64              `db:"storage_used" json:"storage_used" bson:"storage_used"`
	StorageLimitMB     int                `db:"storage_limit" json:"storage_limit" bson:"storage_limit"`
	DailyDownloads     map[string]int     `db:"daily_downloads" json:"daily_downloads" bson:"daily_downloads"`
	PremiumActivatedAt *time.Time         `db:"premium_activated_at" json:"premium_activated_at,omitempty" bson:"premium_activated_at,omitempty"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at" bson:"updated_at"`
}

// NewBasicUser returns the profile a user gets on first sign-in.
func NewBasicUser(userID, email, displayName string, now time.Time) *User {
	return &User{
		UserID:             userID,
		Email:              email,
		DisplayName:        displayName,
		SubscriptionTier:   TierBasic,
		SubscriptionStatus: StatusActive,
		StorageUsed:        0,
		StorageLimitMB:     BasicStorageLimitMB,
		DailyDownloads:     map[string]int{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Upgrade moves the user onto the premium tier.
func (u *User) Upgrade(now time.Time) {
	u.SubscriptionTier = TierPremium
	u.SubscriptionStatus = StatusActive
	u.StorageLimitMB = PremiumStorageLimitMB
	u.PremiumActivatedAt = &now
	u.UpdatedAt = now
}

// Cancel drops the user back to the basic allowance.
func (u *User) Cancel(now time.Time) {
	u.SubscriptionTier = TierBasic
	u.SubscriptionStatus = StatusCancelled
	u.StorageLimitMB = BasicStorageLimitMB
	u.UpdatedAt = now
}

// StorageLimitBytes returns the allowance in bytes.
func (u *User) StorageLimitBytes() int64 {
	return int64(u.StorageLimitMB) * bytesPerMB
}

// StorageUsedMB returns the used storage in megabytes rounded to one decimal.
func (u *User) StorageUsedMB() float64 {
	return RoundOneDecimal(float64(u.StorageUsed) / bytesPerMB)
}

// DownloadsOn returns the number of downloads recorded for the given day key.
func (u *User) DownloadsOn(day string) int {
	if u.DailyDownloads == nil {
		return 0
	}
	return u.DailyDownloads[day]
}

// Identity is a caller verified by the identity provider.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// DisplayName falls back to the local part of the email when the provider has no name.
func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}
