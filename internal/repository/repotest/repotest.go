// Package repotest exercises repository implementations against the shared
// contract. Backends call these from their own tests.
package repotest

import (
	"context"
	"testing"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Second precision keeps timestamps comparable across backends.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func UserRepository(t *testing.T, repo repository.UserRepository) {
	ctx := context.Background()

	t.Run("missing user", func(t *testing.T) {
		u, err := repo.GetUserByID(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("save and get", func(t *testing.T) {
		u := model.NewBasicUser(uuid.NewString(), "ann@example.com", "ann", now())
		require.NoError(t, repo.SaveUser(ctx, u))

		got, err := repo.GetUserByID(ctx, u.UserID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "ann@example.com", got.Email)
		assert.Equal(t, model.TierBasic, got.SubscriptionTier)
		assert.Equal(t, model.BasicStorageLimitMB, got.StorageLimitMB)
		assert.Equal(t, 0, got.DownloadsOn("2024-01-01"))
	})

	t.Run("update subscription", func(t *testing.T) {
		u := model.NewBasicUser(uuid.NewString(), "bob@example.com", "bob", now())
		require.NoError(t, repo.SaveUser(ctx, u))

		u.Upgrade(now())
		require.NoError(t, repo.UpdateSubscription(ctx, u))

		got, err := repo.GetUserByID(ctx, u.UserID)
		require.NoError(t, err)
		assert.Equal(t, model.TierPremium, got.SubscriptionTier)
		assert.Equal(t, model.PremiumStorageLimitMB, got.StorageLimitMB)
		require.NotNil(t, got.PremiumActivatedAt)
	})

	t.Run("update subscription of missing user", func(t *testing.T) {
		u := model.NewBasicUser(uuid.NewString(), "x@example.com", "x", now())
		assert.ErrorIs(t, repo.UpdateSubscription(ctx, u), repository.ErrNotFound)
	})

	t.Run("daily downloads", func(t *testing.T) {
		u := model.NewBasicUser(uuid.NewString(), "cy@example.com", "cy", now())
		require.NoError(t, repo.SaveUser(ctx, u))

		require.NoError(t, repo.IncrementDailyDownloads(ctx, u.UserID, "2024-03-01"))
		require.NoError(t, repo.IncrementDailyDownloads(ctx, u.UserID, "2024-03-01"))
		require.NoError(t, repo.IncrementDailyDownloads(ctx, u.UserID, "2024-03-02"))

		got, err := repo.GetUserByID(ctx, u.UserID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.DownloadsOn("2024-03-01"))
		assert.Equal(t, 1, got.DownloadsOn("2024-03-02"))
	})

	t.Run("storage used never negative", func(t *testing.T) {
		u := model.NewBasicUser(uuid.NewString(), "di@example.com", "di", now())
		require.NoError(t, repo.SaveUser(ctx, u))

		require.NoError(t, repo.AddStorageUsed(ctx, u.UserID, 1000))
		require.NoError(t, repo.AddStorageUsed(ctx, u.UserID, -400))
		got, err := repo.GetUserByID(ctx, u.UserID)
		require.NoError(t, err)
		assert.EqualValues(t, 600, got.StorageUsed)

		require.NoError(t, repo.AddStorageUsed(ctx, u.UserID, -5000))
		got, err = repo.GetUserByID(ctx, u.UserID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, got.StorageUsed)
	})
}

func FileRepository(t *testing.T, repo repository.FileRepository) {
	ctx := context.Background()
	owner := uuid.NewString()
	base := now()

	older := &model.File{ID: uuid.NewString(), UserID: owner, Name: "a.txt", Size: 10,
		ContentType: "text/plain", StoragePath: owner + "/a.txt", UploadDate: base.Add(-time.Hour)}
	newer := &model.File{ID: uuid.NewString(), UserID: owner, Name: "b.txt", Size: 20,
		ContentType: "text/plain", StoragePath: owner + "/b.txt", UploadDate: base}
	require.NoError(t, repo.CreateFile(ctx, older))
	require.NoError(t, repo.CreateFile(ctx, newer))

	got, err := repo.GetFileByID(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a.txt", got.Name)
	assert.EqualValues(t, 10, got.Size)

	files, err := repo.ListFilesByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, newer.ID, files[0].ID)

	none, err := repo.ListFilesByUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, repo.DeleteFile(ctx, older.ID))
	got, err = repo.GetFileByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, repo.DeleteFile(ctx, older.ID), repository.ErrNotFound)
}

func SharedFileRepository(t *testing.T, repo repository.SharedFileRepository) {
	ctx := context.Background()
	sharer := uuid.NewString()
	base := now()

	file := &model.File{ID: uuid.NewString(), UserID: sharer, Name: "save.sim", Size: 42,
		ContentType: "application/octet-stream", StoragePath: sharer + "/save.sim"}
	first := model.NewSharedFile(uuid.NewString(), file, sharer, "sharer", "first", base.Add(-time.Minute))
	second := model.NewSharedFile(uuid.NewString(), file, sharer, "sharer", "second", base)
	require.NoError(t, repo.CreateSharedFile(ctx, first))
	require.NoError(t, repo.CreateSharedFile(ctx, second))

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetSharedFileByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "save.sim", got.FileName)
		assert.True(t, got.IsActive)
		assert.Empty(t, got.Ratings)

		missing, err := repo.GetSharedFileByID(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("has share", func(t *testing.T) {
		ok, err := repo.HasShare(ctx, file.ID, sharer)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.HasShare(ctx, file.ID, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ratings", func(t *testing.T) {
		sf, err := repo.GetSharedFileByID(ctx, first.ID)
		require.NoError(t, err)
		sf.ApplyRating("r1", 4)
		sf.ApplyRating("r2", 5)
		require.NoError(t, repo.UpdateRatings(ctx, sf))

		got, err := repo.GetSharedFileByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"r1": 4, "r2": 5}, got.Ratings)
		assert.Equal(t, 4.5, got.AverageRating)
		assert.Equal(t, 2, got.RatingCount)
	})

	t.Run("downloads", func(t *testing.T) {
		require.NoError(t, repo.IncrementDownloads(ctx, second.ID))
		require.NoError(t, repo.IncrementDownloads(ctx, second.ID))
		got, err := repo.GetSharedFileByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.DownloadsCount)
		assert.ErrorIs(t, repo.IncrementDownloads(ctx, uuid.NewString()), repository.ErrNotFound)
	})

	t.Run("deactivate", func(t *testing.T) {
		require.NoError(t, repo.Deactivate(ctx, first.ID, base))
		got, err := repo.GetSharedFileByID(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		require.NotNil(t, got.UnsharedAt)

		ok, err := repo.HasShare(ctx, file.ID, sharer)
		require.NoError(t, err)
		assert.True(t, ok, "inactive records still count as shares")
	})

	t.Run("list active", func(t *testing.T) {
		page, err := repo.ListActive(ctx, 1000, 0)
		require.NoError(t, err)
		ids := make([]string, 0, len(page))
		for _, sf := range page {
			ids = append(ids, sf.ID)
			assert.True(t, sf.IsActive)
		}
		assert.Contains(t, ids, second.ID)
		assert.NotContains(t, ids, first.ID)
		for i := 1; i < len(page); i++ {
			assert.False(t, page[i].CreatedAt.After(page[i-1].CreatedAt))
		}
	})
}
