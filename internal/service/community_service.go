package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"
	"simsync/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultCommunityLimit is the page size used when the caller gives none.
const DefaultCommunityLimit = 50

// RatingResult is the outcome of a rating.
type RatingResult struct {
	Score         int
	AverageRating float64
	RatingCount   int
	Previous      *int
}

// DownloadResult carries a signed URL for a community file.
type DownloadResult struct {
	URL      string
	FileName string
	FileSize int64
}

// CommunityService manages the public listing of shared files.
type CommunityService interface {
	Share(ctx context.Context, sharer *model.Identity, fileID, description string) (*model.SharedFile, error)
	List(ctx context.Context, limit, offset int) ([]model.SharedFile, error)
	Unshare(ctx context.Context, sharedFileID, callerID string) error
	Rate(ctx context.Context, sharedFileID, raterID string, score int) (*RatingResult, error)
	Download(ctx context.Context, sharedFileID string, caller *model.Identity) (*DownloadResult, error)
}

type communityService struct {
	files         repository.FileRepository
	sharedFiles   repository.SharedFileRepository
	users         repository.UserRepository
	subscriptions SubscriptionService
	store         storage.ObjectStore
	now           func() time.Time
	newID         func() string
	logger        zerolog.Logger
}

func NewCommunityService(
	files repository.FileRepository,
	sharedFiles repository.SharedFileRepository,
	users repository.UserRepository,
	subscriptions SubscriptionService,
	store storage.ObjectStore,
	logger zerolog.Logger,
) CommunityService {
	return &communityService{
		files:         files,
		sharedFiles:   sharedFiles,
		users:         users,
		subscriptions: subscriptions,
		store:         store,
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        logger.With().Str("service", "CommunityService").Logger(),
	}
}

func (s *communityService) Share(ctx context.Context, sharer *model.Identity, fileID, description string) (*model.SharedFile, error) {
	f, err := s.files.GetFileByID(ctx, fileID)
	if err != nil {
		s.logger.Error().Err(err).Str("file_id", fileID).Msg("Failed to fetch file to share")
		return nil, fmt.Errorf("fetching file: %w", err)
	}
	if f == nil {
		return nil, newError(ErrNotFound, "File not found")
	}
	if f.UserID != sharer.UID {
		return nil, newError(ErrForbidden, "You can only share your own files")
	}

	// Earlier shares block a new one even after they were unshared.
	exists, err := s.sharedFiles.HasShare(ctx, fileID, sharer.UID)
	if err != nil {
		s.logger.Error().Err(err).Str("file_id", fileID).Msg("Failed to check existing share")
		return nil, fmt.Errorf("checking existing share: %w", err)
	}
	if exists {
		return nil, newError(ErrInvalidArgument, "File is already shared")
	}

	sf := model.NewSharedFile(s.newID(), f, sharer.UID, sharer.DisplayName(), description, s.now())
	if err := s.sharedFiles.CreateSharedFile(ctx, sf); err != nil {
		s.logger.Error().Err(err).Str("file_id", fileID).Msg("Failed to create shared file")
		return nil, fmt.Errorf("creating shared file: %w", err)
	}
	s.logger.Info().Str("shared_file_id", sf.ID).Str("user_id", sharer.UID).Msg("File shared")
	return sf, nil
}

func (s *communityService) List(ctx context.Context, limit, offset int) ([]model.SharedFile, error) {
	if limit <= 0 {
		limit = DefaultCommunityLimit
	}
	if offset < 0 {
		offset = 0
	}
	files, err := s.sharedFiles.ListActive(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list community files")
		return nil, fmt.Errorf("listing shared files: %w", err)
	}
	return files, nil
}

func (s *communityService) getShared(ctx context.Context, id string) (*model.SharedFile, error) {
	sf, err := s.sharedFiles.GetSharedFileByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("shared_file_id", id).Msg("Failed to fetch shared file")
		return nil, fmt.Errorf("fetching shared file: %w", err)
	}
	if sf == nil {
		return nil, newError(ErrNotFound, "Shared file not found")
	}
	return sf, nil
}

func (s *communityService) Unshare(ctx context.Context, sharedFileID, callerID string) error {
	sf, err := s.getShared(ctx, sharedFileID)
	if err != nil {
		return err
	}
	if sf.SharedByUID != callerID {
		return newError(ErrForbidden, "You can only unshare your own files")
	}
	if err := s.sharedFiles.Deactivate(ctx, sharedFileID, s.now()); err != nil {
		s.logger.Error().Err(err).Str("shared_file_id", sharedFileID).Msg("Failed to unshare file")
		return fmt.Errorf("deactivating shared file: %w", err)
	}
	return nil
}

func (s *communityService) Rate(ctx context.Context, sharedFileID, raterID string, score int) (*RatingResult, error) {
	if !model.ValidRating(score) {
		return nil, newError(ErrInvalidArgument, "Rating must be between %d and %d", model.MinRating, model.MaxRating)
	}
	sf, err := s.getShared(ctx, sharedFileID)
	if err != nil {
		return nil, err
	}
	if sf.SharedByUID == raterID {
		return nil, newError(ErrInvalidArgument, "You cannot rate your own file")
	}

	// Read-modify-write; concurrent raters of the same file can lose an update.
	previous := sf.ApplyRating(raterID, score)
	if err := s.sharedFiles.UpdateRatings(ctx, sf); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Shared file not found")
		}
		s.logger.Error().Err(err).Str("shared_file_id", sharedFileID).Msg("Failed to store rating")
		return nil, fmt.Errorf("updating ratings: %w", err)
	}
	return &RatingResult{
		Score:         score,
		AverageRating: sf.AverageRating,
		RatingCount:   sf.RatingCount,
		Previous:      previous,
	}, nil
}

// Download checks the caller's quota, signs a URL and records the download.
// The quota read and the counter writes are not atomic together, so
// concurrent downloads by one basic user can pass the limit.
func (s *communityService) Download(ctx context.Context, sharedFileID string, caller *model.Identity) (*DownloadResult, error) {
	log := s.logger.With().Str("shared_file_id", sharedFileID).Str("user_id", caller.UID).Logger()

	sf, err := s.getShared(ctx, sharedFileID)
	if err != nil {
		return nil, err
	}

	user := s.subscriptions.GetOrCreate(ctx, caller)
	day := s.now().UTC().Format(model.DayKeyLayout)
	if err := CheckDownloadQuota(user, day); err != nil {
		log.Info().Str("day", day).Int("downloads", user.DownloadsOn(day)).Msg("Download quota exhausted")
		return nil, err
	}

	exists, err := s.store.Exists(ctx, sf.StoragePath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check blob existence")
		return nil, fmt.Errorf("checking blob: %w", err)
	}
	if !exists {
		return nil, newError(ErrNotFound, "File not found in storage")
	}
	url, err := s.store.SignedURL(ctx, sf.StoragePath, storage.SignedURLTTL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign download URL")
		return nil, fmt.Errorf("signing download url: %w", err)
	}

	if err := s.sharedFiles.IncrementDownloads(ctx, sharedFileID); err != nil {
		log.Error().Err(err).Msg("Failed to increment downloads count")
		return nil, fmt.Errorf("incrementing downloads: %w", err)
	}
	if user.SubscriptionTier == model.TierBasic {
		if err := s.users.IncrementDailyDownloads(ctx, caller.UID, day); err != nil {
			log.Error().Err(err).Str("day", day).Msg("Failed to record daily download")
			return nil, fmt.Errorf("recording daily download: %w", err)
		}
	}

	return &DownloadResult{URL: url, FileName: sf.FileName, FileSize: sf.FileSize}, nil
}
