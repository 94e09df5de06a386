package dto

import "time"

type FileUploadResponseDTO struct {
	Message     string `json:"message"`
	FileID      string `json:"file_id"`
	DownloadURL string `json:"download_url"`
}

type FileMetadataDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	UploadDate  time.Time `json:"upload_date"`
	ContentType string    `json:"content_type"`
	DownloadURL string    `json:"download_url"`
}

type FileListResponseDTO struct {
	Files      []FileMetadataDTO `json:"files"`
	TotalCount int               `json:"total_count"`
}
