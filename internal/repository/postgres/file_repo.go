package postgres

import (
	"context"
	"errors"
	"fmt"

	"simsync/internal/model"
	"simsync/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type fileRepo struct {
	pool *pgxpool.Pool
}

// NewFileRepo creates a PostgreSQL-backed FileRepository.
func NewFileRepo(pool *pgxpool.Pool) repository.FileRepository {
	return &fileRepo{pool: pool}
}

func (r *fileRepo) CreateFile(ctx context.Context, f *model.File) error {
	const q = `
		INSERT INTO files (id, user_id, name, size, content_type, storage_path, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.pool.Exec(ctx, q, f.ID, f.UserID, f.Name, f.Size, f.ContentType, f.StoragePath, f.UploadDate); err != nil {
		return fmt.Errorf("creating file %s: %w", f.ID, err)
	}
	return nil
}

func (r *fileRepo) GetFileByID(ctx context.Context, fileID string) (*model.File, error) {
	const q = `
		SELECT id, user_id, name, size, content_type, storage_path, upload_date
		FROM files
		WHERE id = $1
	`
	var f model.File
	err := r.pool.QueryRow(ctx, q, fileID).Scan(&f.ID, &f.UserID, &f.Name, &f.Size, &f.ContentType, &f.StoragePath, &f.UploadDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching file %s: %w", fileID, err)
	}
	return &f, nil
}

func (r *fileRepo) ListFilesByUser(ctx context.Context, userID string) ([]model.File, error) {
	const q = `
		SELECT id, user_id, name, size, content_type, storage_path, upload_date
		FROM files
		WHERE user_id = $1
		ORDER BY upload_date DESC
	`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing files for user %s: %w", userID, err)
	}
	defer rows.Close()

	files := []model.File{}
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Size, &f.ContentType, &f.StoragePath, &f.UploadDate); err != nil {
			return nil, fmt.Errorf("scanning file row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file rows: %w", err)
	}
	return files, nil
}

func (r *fileRepo) DeleteFile(ctx context.Context, fileID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, fileID); err != nil {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}
	return nil
}
