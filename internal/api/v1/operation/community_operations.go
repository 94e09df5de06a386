package operation

import "simsync/internal/api/v1/dto"

type ShareFileInput struct {
	Body dto.ShareFileRequestDTO `json:"body"`
}

type ShareFileOutput struct {
	Body dto.ShareFileResponseDTO `json:"body"`
}

type ListCommunityFilesInput struct {
	Limit  int `query:"limit" default:"50" doc:"Number of files to return"`
	Offset int `query:"offset" default:"0" doc:"Offset for pagination"`
}

type ListCommunityFilesOutput struct {
	Body dto.CommunityFilesResponseDTO `json:"body"`
}

type DownloadCommunityFileInput struct {
	SharedFileID string `path:"id" doc:"Shared file ID"`
}

type DownloadCommunityFileOutput struct {
	Body dto.DownloadResponseDTO `json:"body"`
}

type RateCommunityFileInput struct {
	SharedFileID string                 `path:"id" doc:"Shared file ID"`
	Body         dto.RateFileRequestDTO `json:"body"`
}

type RateCommunityFileOutput struct {
	Body dto.RateFileResponseDTO `json:"body"`
}

type UnshareFileInput struct {
	SharedFileID string `path:"id" doc:"Shared file ID"`
}

type UnshareFileOutput struct {
	Body dto.MessageResponseDTO `json:"body"`
}
