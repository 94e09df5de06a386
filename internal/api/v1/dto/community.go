package dto

import "time"

type ShareFileRequestDTO struct {
	FileID      string `json:"file_id" minLength:"1" doc:"ID of the file to share"`
	Description string `json:"description" required:"false" doc:"Optional description shown in the listing"`
}

type ShareFileResponseDTO struct {
	Message      string `json:"message"`
	SharedFileID string `json:"shared_file_id"`
	CommunityURL string `json:"community_url"`
}

// CommunityFileDTO is one entry of the public listing.
type CommunityFileDTO struct {
	ID             string    `json:"id"`
	OriginalFileID string    `json:"original_file_id"`
	SharedByUID    string    `json:"shared_by_uid"`
	SharedBy       string    `json:"shared_by"`
	Name           string    `json:"name"`
	Size           int64     `json:"size"`
	FileType       string    `json:"file_type"`
	Description    string    `json:"description"`
	Downloads      int       `json:"downloads"`
	AverageRating  float64   `json:"average_rating"`
	RatingCount    int       `json:"rating_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type CommunityFilesResponseDTO struct {
	Files []CommunityFileDTO `json:"files"`
	Total int                `json:"total" doc:"Number of entries in this page"`
}

type DownloadResponseDTO struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
}

type RateFileRequestDTO struct {
	Rating int `json:"rating" required:"false" doc:"Star rating from 1 to 5"`
}

type RateFileResponseDTO struct {
	Message        string  `json:"message"`
	YourRating     int     `json:"your_rating"`
	AverageRating  float64 `json:"average_rating"`
	TotalRatings   int     `json:"total_ratings"`
	PreviousRating *int    `json:"previous_rating"`
}
