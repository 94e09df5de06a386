package model

import (
	"strconv"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SharedFile is a file published to the community listing. Name, size, type
// and path are snapshots of the original file taken at share time.
type SharedFile struct {
	ID             string         `db:"id" json:"id" bson:"_id"`
	OriginalFileID string         `db:"original_file_id" json:"original_file_id" bson:"original_file_id"`
	SharedByUID    string         `db:"shared_by_uid" json:"shared_by_uid" bson:"shared_by_uid"`
	SharedByName   string         `db:"shared_by_name" json:"shared_by_name" bson:"shared_by_name"`
	FileName       string         `db:"file_name" json:"file_name" bson:"file_name"`
	FileSize       int64          `db:"file_size" json:"file_size" bson:"file_size"`
	FileType       string         `db:"file_type" json:"file_type" bson:"file_type"`
	StoragePath    string         `db:"storage_path" json:"storage_path" bson:"storage_path"`
	Description    string         `db:"description" json:"description" bson:"description"`
	DownloadsCount int            `db:"downloads_count" json:"downloads_count" bson:"downloads_count"`
	Ratings        map[string]int `db:"ratings" json:"ratings" bson:"ratings"`
	AverageRating  float64        `db:"average_rating" json:"average_rating" bson:"average_rating"`
	RatingCount    int            `db:"rating_count" json:"rating_count" bson:"rating_count"`
	IsActive       bool           `db:"is_active" json:"is_active" bson:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at" bson:"created_at"`
	UnsharedAt     *time.Time     `db:"unshared_at" json:"unshared_at,omitempty" bson:"unshared_at,omitempty"`
}

// NewSharedFile snapshots f into a fresh, active community record.
func NewSharedFile(id string, f *File, sharerID, sharerName, description string, now time.Time) *SharedFile {
	return &SharedFile{
		ID:             id,
		OriginalFileID: f.ID,
		SharedByUID:    sharerID,
		SharedByName:   sharerName,
		FileName:       f.Name,
		FileSize:       f.Size,
		FileType:       f.ContentType,
		StoragePath:    f.StoragePath,
		Description:    description,
		DownloadsCount: 0,
		Ratings:        map[string]int{},
		AverageRating:  0,
		RatingCount:    0,
		IsActive:       true,
		CreatedAt:      now,
	}
}

// ValidRating reports whether score is an accepted star value.
func ValidRating(score int) bool {
	return score >= MinRating && score <= MaxRating
}

// ApplyRating records raterID's score, replacing any earlier score from the
// same rater, and recomputes AverageRating and RatingCount. It returns the
// replaced score, or nil when the rater had not rated before.
func (s *SharedFile) ApplyRating(raterID string, score int) *int {
	if s.Ratings == nil {
		s.Ratings = map[string]int{}
	}
	var previous *int
	if old, ok := s.Ratings[raterID]; ok {
		previous = &old
	}
	s.Ratings[raterID] = score
	s.recompute()
	return previous
}

func (s *SharedFile) recompute() {
	s.RatingCount = len(s.Ratings)
	if s.RatingCount == 0 {
		s.AverageRating = 0
		return
	}
	total := 0
	for _, v := range s.Ratings {
		total += v
	}
	s.AverageRating = RoundOneDecimal(float64(total) / float64(s.RatingCount))
}

// RoundOneDecimal rounds v to one decimal place using its exact binary value,
// so 1.05 (stored just above 1.05) becomes 1.1 and an exact 4.25 becomes 4.2.
func RoundOneDecimal(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
