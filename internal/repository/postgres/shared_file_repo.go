package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sharedFileColumns = `id, original_file_id, shared_by_uid, shared_by_name, file_name, file_size, file_type,
	storage_path, description, downloads_count, ratings, average_rating, rating_count, is_active, created_at, unshared_at`

type sharedFileRepo struct {
	pool *pgxpool.Pool
}

// NewSharedFileRepo creates a PostgreSQL-backed SharedFileRepository.
func NewSharedFileRepo(pool *pgxpool.Pool) repository.SharedFileRepository {
	return &sharedFileRepo{pool: pool}
}

func scanSharedFile(row pgx.Row) (*model.SharedFile, error) {
	var sf model.SharedFile
	var rawRatings []byte
	err := row.Scan(
		&sf.ID,
		&sf.OriginalFileID,
		&sf.SharedByUID,
		&sf.SharedByName,
		&sf.FileName,
		&sf.FileSize,
		&sf.FileType,
		&sf.StoragePath,
		&sf.Description,
		&sf.DownloadsCount,
		&rawRatings,
		&sf.AverageRating,
		&sf.RatingCount,
		&sf.IsActive,
		&sf.CreatedAt,
		&sf.UnsharedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawRatings, &sf.Ratings); err != nil {
		return nil, fmt.Errorf("unmarshal ratings for shared file %s: %w", sf.ID, err)
	}
	return &sf, nil
}

func (r *sharedFileRepo) CreateSharedFile(ctx context.Context, sf *model.SharedFile) error {
	ratings := sf.Ratings
	if ratings == nil {
		ratings = map[string]int{}
	}
	rawRatings, err := json.Marshal(ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings for shared file %s: %w", sf.ID, err)
	}
	q := `INSERT INTO shared_files (` + sharedFileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13, $14, $15, $16)`
	_, err = r.pool.Exec(ctx, q,
		sf.ID,
		sf.OriginalFileID,
		sf.SharedByUID,
		sf.SharedByName,
		sf.FileName,
		sf.FileSize,
		sf.FileType,
		sf.StoragePath,
		sf.Description,
		sf.DownloadsCount,
		string(rawRatings),
		sf.AverageRating,
		sf.RatingCount,
		sf.IsActive,
		sf.CreatedAt,
		sf.UnsharedAt,
	)
	if err != nil {
		return fmt.Errorf("creating shared file %s: %w", sf.ID, err)
	}
	return nil
}

func (r *sharedFileRepo) GetSharedFileByID(ctx context.Context, id string) (*model.SharedFile, error) {
	q := `SELECT ` + sharedFileColumns + ` FROM shared_files WHERE id = $1`
	sf, err := scanSharedFile(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching shared file %s: %w", id, err)
	}
	return sf, nil
}

func (r *sharedFileRepo) HasShare(ctx context.Context, originalFileID, sharerID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM shared_files WHERE original_file_id = $1 AND shared_by_uid = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, originalFileID, sharerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking existing share of file %s: %w", originalFileID, err)
	}
	return exists, nil
}

func (r *sharedFileRepo) ListActive(ctx context.Context, limit, offset int) ([]model.SharedFile, error) {
	q := `SELECT ` + sharedFileColumns + `
		FROM shared_files
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing shared files: %w", err)
	}
	defer rows.Close()

	files := []model.SharedFile{}
	for rows.Next() {
		sf, err := scanSharedFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shared file row: %w", err)
		}
		files = append(files, *sf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shared file rows: %w", err)
	}
	return files, nil
}

func (r *sharedFileRepo) UpdateRatings(ctx context.Context, sf *model.SharedFile) error {
	rawRatings, err := json.Marshal(sf.Ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings for shared file %s: %w", sf.ID, err)
	}
	const q = `
		UPDATE shared_files
		SET ratings = $2::jsonb, average_rating = $3, rating_count = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, q, sf.ID, string(rawRatings), sf.AverageRating, sf.RatingCount)
	if err != nil {
		return fmt.Errorf("updating ratings for shared file %s: %w", sf.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sharedFileRepo) IncrementDownloads(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE shared_files SET downloads_count = downloads_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incrementing downloads for shared file %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sharedFileRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE shared_files SET is_active = FALSE, unshared_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("deactivating shared file %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
