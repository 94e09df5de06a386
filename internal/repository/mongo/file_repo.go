package mongo

import (
	"context"
	"errors"
	"fmt"

	"simsync/internal/model"
	"simsync/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fileRepo struct {
	coll *mongo.Collection
}

// NewFileRepo creates a MongoDB-backed FileRepository.
func NewFileRepo(db *mongo.Database) repository.FileRepository {
	return &fileRepo{coll: db.Collection(filesCollection)}
}

func (r *fileRepo) CreateFile(ctx context.Context, f *model.File) error {
	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("creating file %s: %w", f.ID, err)
	}
	return nil
}

func (r *fileRepo) GetFileByID(ctx context.Context, fileID string) (*model.File, error) {
	var f model.File
	if err := r.coll.FindOne(ctx, bson.M{"_id": fileID}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching file %s: %w", fileID, err)
	}
	return &f, nil
}

func (r *fileRepo) ListFilesByUser(ctx context.Context, userID string) ([]model.File, error) {
	opts := options.Find().SetSort(bson.D{{Key: "upload_date", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing files for user %s: %w", userID, err)
	}
	files := []model.File{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decoding files for user %s: %w", userID, err)
	}
	return files, nil
}

func (r *fileRepo) DeleteFile(ctx context.Context, fileID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": fileID})
	if err != nil {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
