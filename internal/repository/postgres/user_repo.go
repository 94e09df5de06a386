package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"simsync/internal/model"
	"simsync/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a PostgreSQL-backed UserRepository.
func NewUserRepo(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	const q = `
		SELECT user_id, email, display_name, subscription_tier, subscription_status,
		       storage_used, storage_limit, daily_downloads, premium_activated_at, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	var u model.User
	var rawDownloads []byte
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&u.UserID,
		&u.Email,
		&u.DisplayName,
		&u.SubscriptionTier,
		&u.SubscriptionStatus,
		&u.StorageUsed,
		&u.StorageLimitMB,
		&rawDownloads,
		&u.PremiumActivatedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching user %s: %w", userID, err)
	}
	if err := json.Unmarshal(rawDownloads, &u.DailyDownloads); err != nil {
		return nil, fmt.Errorf("unmarshal daily_downloads for user %s: %w", userID, err)
	}
	return &u, nil
}

func (r *userRepo) SaveUser(ctx context.Context, u *model.User) error {
	downloads := u.DailyDownloads
	if downloads == nil {
		downloads = map[string]int{}
	}
	rawDownloads, err := json.Marshal(downloads)
	if err != nil {
		return fmt.Errorf("marshal daily_downloads for user %s: %w", u.UserID, err)
	}
	const q = `
		INSERT INTO users (user_id, email, display_name, subscription_tier, subscription_status,
		                   storage_used, storage_limit, daily_downloads, premium_activated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = EXCLUDED.display_name,
		    subscription_tier = EXCLUDED.subscription_tier,
		    subscription_status = EXCLUDED.subscription_status,
		    storage_used = EXCLUDED.storage_used,
		    storage_limit = EXCLUDED.storage_limit,
		    daily_downloads = EXCLUDED.daily_downloads,
		    premium_activated_at = EXCLUDED.premium_activated_at,
		    updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, q,
		u.UserID,
		u.Email,
		u.DisplayName,
		string(u.SubscriptionTier),
		string(u.SubscriptionStatus),
		u.StorageUsed,
		u.StorageLimitMB,
		string(rawDownloads),
		u.PremiumActivatedAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving user %s: %w", u.UserID, err)
	}
	return nil
}

func (r *userRepo) UpdateSubscription(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET subscription_tier = $2,
		    subscription_status = $3,
		    storage_limit = $4,
		    premium_activated_at = $5,
		    updated_at = NOW()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, q, u.UserID, string(u.SubscriptionTier), string(u.SubscriptionStatus), u.StorageLimitMB, u.PremiumActivatedAt)
	if err != nil {
		return fmt.Errorf("updating subscription for user %s: %w", u.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) IncrementDailyDownloads(ctx context.Context, userID, day string) error {
	const q = `
		UPDATE users
		SET daily_downloads = jsonb_set(
		        daily_downloads,
		        ARRAY[$2::text],
		        to_jsonb(COALESCE((daily_downloads ->> $2::text)::int, 0) + 1)
		    ),
		    updated_at = NOW()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, q, userID, day)
	if err != nil {
		return fmt.Errorf("incrementing daily downloads for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) AddStorageUsed(ctx context.Context, userID string, delta int64) error {
	const q = `
		UPDATE users
		SET storage_used = GREATEST(storage_used + $2, 0),
		    updated_at = NOW()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, q, userID, delta)
	if err != nil {
		return fmt.Errorf("updating storage used for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
