package model

import "time"

// File is the metadata of a blob a user uploaded
type File struct {
	ID          string    `db:"id" json:"id" bson:"_id"`
	UserID      string    `db:"user_id" json:"user_id" bson:"user_id"`
	Name        string    `db:"name" json:"name" bson:"name"`
	Size        int64     `db:"size" json:"size" bson:"size"`
	ContentType string    `db:"content_type" json:"content_type" bson:"content_type"`
	StoragePath string    `db:"storage_path" json:"storage_path" bson:"storage_path"`
	UploadDate  time.Time `db:"upload_date" json:"upload_date" bson:"upload_date"`
}
