package main

import (
	"context"
	"fmt"

	"simsync/internal/config"
	"simsync/internal/repository"
	"simsync/internal/repository/memory"
	mongorepo "simsync/internal/repository/mongo"
	"simsync/internal/repository/postgres"
	"simsync/internal/storage"

	"github.com/rs/zerolog"
)

type repositories struct {
	users       repository.UserRepository
	files       repository.FileRepository
	sharedFiles repository.SharedFileRepository
	close       func()
}

func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repositories, error) {
	switch cfg.DocumentStore {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DBConnectionString, cfg.Environment, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
		return &repositories{
			users:       postgres.NewUserRepo(pool),
			files:       postgres.NewFileRepo(pool),
			sharedFiles: postgres.NewSharedFileRepo(pool),
			close:       pool.Close,
		}, nil

	case "mongo":
		client, err := mongorepo.Connect(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("creating indexes: %w", err)
		}
		return &repositories{
			users:       mongorepo.NewUserRepo(db),
			files:       mongorepo.NewFileRepo(db),
			sharedFiles: mongorepo.NewSharedFileRepo(db),
			close:       func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case "memory":
		logger.Warn().Msg("Using in-memory document store, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:       store.Users(),
			files:       store.Files(),
			sharedFiles: store.SharedFiles(),
			close:       func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown document store %q", cfg.DocumentStore)
}

func openObjectStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.ObjectStore, error) {
	switch cfg.ObjectStore {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Options{
			URL:       cfg.S3URL,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}, logger)
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, logger)
	case "memory":
		logger.Warn().Msg("Using in-memory object store, blobs are lost on restart")
		return storage.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown object store %q", cfg.ObjectStore)
}
