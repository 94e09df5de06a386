package repository

import (
	"context"
	"time"

	"simsync/internal/model"
)

// Get methods return (nil, nil) when no record matches; only store failures
// are reported as errors. Targeted updates return ErrNotFound when the record
// to update is missing.

// UserRepository persists user profiles and their subscription state.
type UserRepository interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	// SaveUser writes the whole profile, replacing any existing record (last writer wins).
	SaveUser(ctx context.Context, u *model.User) error
	// UpdateSubscription overwrites tier, status, limit and premium activation time.
	UpdateSubscription(ctx context.Context, u *model.User) error
	// IncrementDailyDownloads adds one to DailyDownloads[day].
	IncrementDailyDownloads(ctx context.Context, userID, day string) error
	// AddStorageUsed adds delta (possibly negative) bytes to StorageUsed, never going below zero.
	AddStorageUsed(ctx context.Context, userID string, delta int64) error
}

// FileRepository persists uploaded file metadata.
type FileRepository interface {
	CreateFile(ctx context.Context, f *model.File) error
	GetFileByID(ctx context.Context, fileID string) (*model.File, error)
	ListFilesByUser(ctx context.Context, userID string) ([]model.File, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// SharedFileRepository persists community listings.
type SharedFileRepository interface {
	CreateSharedFile(ctx context.Context, sf *model.SharedFile) error
	GetSharedFileByID(ctx context.Context, id string) (*model.SharedFile, error)
	// HasShare reports whether any record, active or not, exists for the file and sharer.
	HasShare(ctx context.Context, originalFileID, sharerID string) (bool, error)
	// ListActive returns active records newest first.
	ListActive(ctx context.Context, limit, offset int) ([]model.SharedFile, error)
	// UpdateRatings stores Ratings, AverageRating and RatingCount of sf.
	UpdateRatings(ctx context.Context, sf *model.SharedFile) error
	// IncrementDownloads adds one to DownloadsCount.
	IncrementDownloads(ctx context.Context, id string) error
	// Deactivate clears IsActive and stamps UnsharedAt.
	Deactivate(ctx context.Context, id string, at time.Time) error
}
