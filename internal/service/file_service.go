package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"
	"simsync/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadedFile is a file's metadata with a fresh download URL.
type UploadedFile struct {
	model.File
	DownloadURL string
}

// FileService manages a user's own files.
type FileService interface {
	Upload(ctx context.Context, owner *model.Identity, name, contentType string, size int64, body io.Reader) (*UploadedFile, error)
	List(ctx context.Context, userID string) ([]UploadedFile, error)
	Delete(ctx context.Context, fileID, userID string) error
}

type fileService struct {
	files         repository.FileRepository
	users         repository.UserRepository
	subscriptions SubscriptionService
	store         storage.ObjectStore
	now           func() time.Time
	newID         func() string
	logger        zerolog.Logger
}

func NewFileService(
	files repository.FileRepository,
	users repository.UserRepository,
	subscriptions SubscriptionService,
	store storage.ObjectStore,
	logger zerolog.Logger,
) FileService {
	return &fileService{
		files:         files,
		users:         users,
		subscriptions: subscriptions,
		store:         store,
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        logger.With().Str("service", "FileService").Logger(),
	}
}

// StoragePath is the object key of a user's file.
func StoragePath(userID, fileID, name string) string {
	return userID + "/" + fileID + "/" + name
}

func (s *fileService) Upload(ctx context.Context, owner *model.Identity, name, contentType string, size int64, body io.Reader) (*UploadedFile, error) {
	if name == "" {
		return nil, newError(ErrInvalidArgument, "File name is required")
	}
	log := s.logger.With().Str("user_id", owner.UID).Str("file_name", name).Logger()

	user := s.subscriptions.GetOrCreate(ctx, owner)
	if user.StorageUsed+size > user.StorageLimitBytes() {
		log.Info().Int64("size", size).Int64("storage_used", user.StorageUsed).Msg("Upload rejected, storage limit reached")
		return nil, newError(ErrStorageLimitExceeded,
			"Storage limit of %d MB exceeded. Upgrade to Premium for more space!", user.StorageLimitMB)
	}

	f := &model.File{
		ID:          s.newID(),
		UserID:      owner.UID,
		Name:        name,
		Size:        size,
		ContentType: contentType,
		UploadDate:  s.now(),
	}
	f.StoragePath = StoragePath(owner.UID, f.ID, name)

	if err := s.store.Upload(ctx, f.StoragePath, contentType, body, size); err != nil {
		log.Error().Err(err).Msg("Failed to upload blob")
		return nil, fmt.Errorf("uploading blob: %w", err)
	}
	if err := s.files.CreateFile(ctx, f); err != nil {
		log.Error().Err(err).Msg("Failed to save file metadata, removing blob")
		if derr := s.store.Delete(ctx, f.StoragePath); derr != nil {
			log.Error().Err(derr).Str("storage_path", f.StoragePath).Msg("Failed to remove orphaned blob")
		}
		return nil, fmt.Errorf("creating file: %w", err)
	}
	if err := s.users.AddStorageUsed(ctx, owner.UID, size); err != nil {
		log.Warn().Err(err).Msg("Failed to update storage used")
	}

	url, err := s.store.SignedURL(ctx, f.StoragePath, storage.SignedURLTTL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign download URL")
		return nil, fmt.Errorf("signing download url: %w", err)
	}
	log.Info().Str("file_id", f.ID).Int64("size", size).Msg("File uploaded")
	return &UploadedFile{File: *f, DownloadURL: url}, nil
}

func (s *fileService) List(ctx context.Context, userID string) ([]UploadedFile, error) {
	files, err := s.files.ListFilesByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list files")
		return nil, fmt.Errorf("listing files: %w", err)
	}
	out := make([]UploadedFile, 0, len(files))
	for _, f := range files {
		url, err := s.store.SignedURL(ctx, f.StoragePath, storage.SignedURLTTL)
		if err != nil {
			s.logger.Error().Err(err).Str("file_id", f.ID).Msg("Failed to sign download URL")
			return nil, fmt.Errorf("signing download url: %w", err)
		}
		out = append(out, UploadedFile{File: f, DownloadURL: url})
	}
	return out, nil
}

// Delete removes the blob before the metadata, so a failed blob delete
// leaves the file listed and retryable.
func (s *fileService) Delete(ctx context.Context, fileID, userID string) error {
	log := s.logger.With().Str("file_id", fileID).Str("user_id", userID).Logger()

	f, err := s.files.GetFileByID(ctx, fileID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch file")
		return fmt.Errorf("fetching file: %w", err)
	}
	if f == nil {
		return newError(ErrNotFound, "File not found")
	}
	if f.UserID != userID {
		return newError(ErrForbidden, "Access denied")
	}

	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		log.Error().Err(err).Msg("Failed to delete blob, keeping metadata")
		return fmt.Errorf("deleting blob: %w", err)
	}
	if err := s.files.DeleteFile(ctx, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "File not found")
		}
		log.Error().Err(err).Msg("Failed to delete file metadata")
		return fmt.Errorf("deleting file: %w", err)
	}
	if err := s.users.AddStorageUsed(ctx, userID, -f.Size); err != nil {
		log.Warn().Err(err).Msg("Failed to update storage used")
	}
	return nil
}
