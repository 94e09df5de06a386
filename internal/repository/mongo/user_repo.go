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

type userRepo struct {
	coll *mongo.Collection
}

// NewUserRepo creates a MongoDB-backed UserRepository.
func NewUserRepo(db *mongo.Database) repository.UserRepository {
	return &userRepo{coll: db.Collection(usersCollection)}
}

func (r *userRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching user %s: %w", userID, err)
	}
	return &u, nil
}

func (r *userRepo) SaveUser(ctx context.Context, u *model.User) error {
	doc := *u
	if doc.DailyDownloads == nil {
		doc.DailyDownloads = map[string]int{}
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.UserID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("saving user %s: %w", u.UserID, err)
	}
	return nil
}

func (r *userRepo) UpdateSubscription(ctx context.Context, u *model.User) error {
	set := bson.M{
		"subscription_tier":   u.SubscriptionTier,
		"subscription_status": u.SubscriptionStatus,
		"storage_limit":       u.StorageLimitMB,
		"updated_at":          time.Now(),
	}
	if u.PremiumActivatedAt != nil {
		set["premium_activated_at"] = *u.PremiumActivatedAt
	}
	return r.update(ctx, u.UserID, bson.M{"$set": set}, "updating subscription")
}

func (r *userRepo) IncrementDailyDownloads(ctx context.Context, userID, day string) error {
	update := bson.M{
		"$inc": bson.M{"daily_downloads." + day: 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	return r.update(ctx, userID, update, "incrementing daily downloads")
}

func (r *userRepo) AddStorageUsed(ctx context.Context, userID string, delta int64) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "storage_used", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$add", Value: bson.A{"$storage_used", delta}}},
			}}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
	}
	return r.update(ctx, userID, pipeline, "updating storage used")
}

func (r *userRepo) update(ctx context.Context, userID string, update interface{}, action string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("%s for user %s: %w", action, userID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
