package operation

import "simsync/internal/api/v1/dto"

type ListFilesInput struct {
	// No input needed - user ID comes from auth context
}

type ListFilesOutput struct {
	Body dto.FileListResponseDTO `json:"body"`
}

type DeleteFileInput struct {
	FileID string `path:"fileId" doc:"File ID"`
}

type DeleteFileOutput struct {
	Body dto.MessageResponseDTO `json:"body"`
}
