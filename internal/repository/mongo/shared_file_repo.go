package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sharedFileRepo struct {
	coll *mongo.Collection
}

// NewSharedFileRepo creates a MongoDB-backed SharedFileRepository.
func NewSharedFileRepo(db *mongo.Database) repository.SharedFileRepository {
	return &sharedFileRepo{coll: db.Collection(sharedFilesCollection)}
}

func (r *sharedFileRepo) CreateSharedFile(ctx context.Context, sf *model.SharedFile) error {
	doc := *sf
	if doc.Ratings == nil {
		doc.Ratings = map[string]int{}
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("creating shared file %s: %w", sf.ID, err)
	}
	return nil
}

func (r *sharedFileRepo) GetSharedFileByID(ctx context.Context, id string) (*model.SharedFile, error) {
	var sf model.SharedFile
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sf); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching shared file %s: %w", id, err)
	}
	return &sf, nil
}

func (r *sharedFileRepo) HasShare(ctx context.Context, originalFileID, sharerID string) (bool, error) {
	filter := bson.M{"original_file_id": originalFileID, "shared_by_uid": sharerID}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("checking existing share of file %s: %w", originalFileID, err)
	}
	return n > 0, nil
}

func (r *sharedFileRepo) ListActive(ctx context.Context, limit, offset int) ([]model.SharedFile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing shared files: %w", err)
	}
	files := []model.SharedFile{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decoding shared files: %w", err)
	}
	return files, nil
}

func (r *sharedFileRepo) UpdateRatings(ctx context.Context, sf *model.SharedFile) error {
	update := bson.M{"$set": bson.M{
		"ratings":        sf.Ratings,
		"average_rating": sf.AverageRating,
		"rating_count":   sf.RatingCount,
	}}
	return r.update(ctx, sf.ID, update, "updating ratings")
}

func (r *sharedFileRepo) IncrementDownloads(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"$inc": bson.M{"downloads_count": 1}}, "incrementing downloads")
}

func (r *sharedFileRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{"is_active": false, "unshared_at": at}}
	return r.update(ctx, id, update, "deactivating")
}

func (r *sharedFileRepo) update(ctx context.Context, id string, update bson.M, action string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("%s shared file %s: %w", action, id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
