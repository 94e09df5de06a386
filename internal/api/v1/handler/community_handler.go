package handler

import (
	"context"
	"fmt"

	"simsync/internal/api/v1/dto"
	"simsync/internal/api/v1/operation"
	"simsync/internal/service"

	"github.com/rs/zerolog"
)

// CommunityHandler implements the community sharing operations
type CommunityHandler struct {
	communityService service.CommunityService
	logger           zerolog.Logger
}

func NewCommunityHandler(communityService service.CommunityService, logger zerolog.Logger) *CommunityHandler {
	return &CommunityHandler{
		communityService: communityService,
		logger:           logger,
	}
}

// ShareFile publishes one of the caller's files
func (h *CommunityHandler) ShareFile(ctx context.Context, input *operation.ShareFileInput) (*operation.ShareFileOutput, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sf, err := h.communityService.Share(ctx, id, input.Body.FileID, input.Body.Description)
	if err != nil {
		return nil, toAPIError(h.logger, err, "Failed to share file")
	}
	return &operation.ShareFileOutput{
		Body: dto.ShareFileResponseDTO{
			Message:      "File shared successfully!",
			SharedFileID: sf.ID,
			CommunityURL: "/community/" + sf.ID,
		},
	}, nil
}

// ListCommunityFiles returns a page of active shares. No authentication required.
func (h *CommunityHandler) ListCommunityFiles(ctx context.Context, input *operation.ListCommunityFilesInput) (*operation.ListCommunityFilesOutput, error) {
	files, err := h.communityService.List(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, toAPIError(h.logger, err, "Failed to retrieve community files")
	}

	out := make([]dto.CommunityFileDTO, 0, len(files))
	for _, sf := range files {
		out = append(out, dto.CommunityFileDTO{
			ID:             sf.ID,
			OriginalFileID: sf.OriginalFileID,
			SharedByUID:    sf.SharedByUID,
			SharedBy:       sf.SharedByName,
			Name:           sf.FileName,
			Size:           sf.FileSize,
			FileType:       sf.FileType,
			Description:    sf.Description,
			Downloads:      sf.DownloadsCount,
			AverageRating:  sf.AverageRating,
			RatingCount:    sf.RatingCount,
			CreatedAt:      sf.CreatedAt,
		})
	}
	return &operation.ListCommunityFilesOutput{
		Body: dto.CommunityFilesResponseDTO{Files: out, Total: len(out)},
	}, nil
}

// DownloadCommunityFile signs a URL for a shared file, charging the caller's daily quota
func (h *CommunityHandler) DownloadCommunityFile(ctx context.Context, input *operation.DownloadCommunityFileInput) (*operation.DownloadCommunityFileOutput, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	res, err := h.communityService.Download(ctx, input.SharedFileID, id)
	if err != nil {
		return nil, toAPIError(h.logger, err, "Failed to download file")
	}
	return &operation.DownloadCommunityFileOutput{
		Body: dto.DownloadResponseDTO{
			DownloadURL: res.URL,
			FileName:    res.FileName,
			FileSize:    res.FileSize,
		},
	}, nil
}

// RateCommunityFile records the caller's star rating
func (h *CommunityHandler) RateCommunityFile(ctx context.Context, input *operation.RateCommunityFileInput) (*operation.RateCommunityFileOutput, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	res, err := h.communityService.Rate(ctx, input.SharedFileID, id.UID, input.Body.Rating)
	if err != nil {
		return nil, toAPIError(h.logger, err, "Failed to rate file")
	}
	return &operation.RateCommunityFileOutput{
		Body: dto.RateFileResponseDTO{
			Message:        fmt.Sprintf("Rated %d stars!", res.Score),
			YourRating:     res.Score,
			AverageRating:  res.AverageRating,
			TotalRatings:   res.RatingCount,
			PreviousRating: res.Previous,
		},
	}, nil
}

// UnshareFile withdraws one of the caller's shares
func (h *CommunityHandler) UnshareFile(ctx context.Context, input *operation.UnshareFileInput) (*operation.UnshareFileOutput, error) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.communityService.Unshare(ctx, input.SharedFileID, id.UID); err != nil {
		return nil, toAPIError(h.logger, err, "Failed to unshare file")
	}
	return &operation.UnshareFileOutput{
		Body: dto.MessageResponseDTO{Message: "File removed from community sharing"},
	}, nil
}
