package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"simsync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShare(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "house.package")

	sf, err := f.community.Share(ctx, &model.Identity{UID: "ann", Email: "ann@example.com", Name: "Ann"}, file.ID, "A cosy house")
	require.NoError(t, err)
	assert.Equal(t, file.ID, sf.OriginalFileID)
	assert.Equal(t, "Ann", sf.SharedByName)
	assert.Equal(t, "house.package", sf.FileName)
	assert.Equal(t, file.Size, sf.FileSize)
	assert.Equal(t, file.StoragePath, sf.StoragePath)
	assert.Equal(t, "A cosy house", sf.Description)
	assert.Equal(t, 0, sf.DownloadsCount)
	assert.Empty(t, sf.Ratings)
	assert.True(t, sf.IsActive)

	stored, err := f.db.SharedFiles().GetSharedFileByID(ctx, sf.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestShareSharerNameFallsBackToEmail(t *testing.T) {
	f := newFixture()
	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(context.Background(), identity("ann"), file.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "ann", sf.SharedByName)
}

func TestShareErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")

	_, err := f.community.Share(ctx, identity("ann"), "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.community.Share(ctx, identity("bob"), file.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)
	_, err = f.community.Share(ctx, identity("ann"), file.ID, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "File is already shared", Message(err, ""))

	require.NoError(t, f.community.Unshare(ctx, sf.ID, "ann"))
	_, err = f.community.Share(ctx, identity("ann"), file.ID, "")
	assert.ErrorIs(t, err, ErrInvalidArgument, "unshared files cannot be shared again")
}

func TestListNewestFirstAndPaged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		file := f.seedFile("ann", "f.package")
		sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
		require.NoError(t, err)
		ids = append(ids, sf.ID)
		f.clock = f.clock.Add(time.Minute)
	}

	all, err := f.community.List(ctx, 0, -5)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	page, err := f.community.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	require.NoError(t, f.community.Unshare(ctx, ids[2], "ann"))
	all, err = f.community.List(ctx, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, sf := range all {
		assert.NotEqual(t, ids[2], sf.ID)
	}
}

func TestUnshare(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.community.Unshare(ctx, "missing", "ann"), ErrNotFound)
	assert.ErrorIs(t, f.community.Unshare(ctx, sf.ID, "bob"), ErrForbidden)

	require.NoError(t, f.community.Unshare(ctx, sf.ID, "ann"))
	stored, err := f.db.SharedFiles().GetSharedFileByID(ctx, sf.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.UnsharedAt)

	assert.NoError(t, f.community.Unshare(ctx, sf.ID, "ann"), "unsharing twice succeeds")
}

func TestRate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)

	res, err := f.community.Rate(ctx, sf.ID, "bob", 3)
	require.NoError(t, err)
	assert.Nil(t, res.Previous)
	assert.Equal(t, 3.0, res.AverageRating)

	_, err = f.community.Rate(ctx, sf.ID, "cy", 4)
	require.NoError(t, err)
	res, err = f.community.Rate(ctx, sf.ID, "di", 5)
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.AverageRating)
	assert.Equal(t, 3, res.RatingCount)

	res, err = f.community.Rate(ctx, sf.ID, "bob", 5)
	require.NoError(t, err)
	require.NotNil(t, res.Previous)
	assert.Equal(t, 3, *res.Previous)
	assert.Equal(t, 4.7, res.AverageRating)
	assert.Equal(t, 3, res.RatingCount)

	stored, err := f.db.SharedFiles().GetSharedFileByID(ctx, sf.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"bob": 5, "cy": 4, "di": 5}, stored.Ratings)
	assert.Equal(t, 4.7, stored.AverageRating)
}

// 21/20 is stored just above 1.05, so the average rounds up like Python's round.
func TestRateAverageRoundsTwentyRaters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)

	var res *RatingResult
	for i := range 20 {
		score := 1
		if i == 0 {
			score = 2
		}
		res, err = f.community.Rate(ctx, sf.ID, fmt.Sprintf("rater-%d", i), score)
		require.NoError(t, err)
	}
	assert.Equal(t, 20, res.RatingCount)
	assert.Equal(t, 1.1, res.AverageRating)

	stored, err := f.db.SharedFiles().GetSharedFileByID(ctx, sf.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.1, stored.AverageRating)
}

func TestRateErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)

	for _, score := range []int{0, 6, -1} {
		_, err := f.community.Rate(ctx, sf.ID, "bob", score)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	_, err = f.community.Rate(ctx, "missing", "bob", 3)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.community.Rate(ctx, sf.ID, "ann", 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "You cannot rate your own file", Message(err, ""))

	stored, err := f.db.SharedFiles().GetSharedFileByID(ctx, sf.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Ratings)
}

func TestDownloadBasicQuota(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)

	for i := 0; i < model.BasicDailyDownloadLimit; i++ {
		res, err := f.community.Download(ctx, sf.ID, identity("bob"))
		require.NoError(t, err, "download %d", i+1)
		assert.NotEmpty(t, res.URL)
		assert.Equal(t, "a.package", res.FileName)
		assert.Equal(t, file.Size, res.FileSize)
	}

	_, err = f.community.Download(ctx, sf.ID, identity("bob"))
	assert.ErrorIs(t, err, ErrRateLimited)

	stored, err := f.db.SharedFiles().GetSharedFileByID(ctx, sf.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BasicDailyDownloadLimit, stored.DownloadsCount)

	bob, err := f.db.Users().GetUserByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.BasicDailyDownloadLimit, bob.DownloadsOn("2024-06-01"))

	f.clock = f.clock.Add(24 * time.Hour)
	_, err = f.community.Download(ctx, sf.ID, identity("bob"))
	assert.NoError(t, err, "quota resets on the next day")
}

func TestDownloadPremiumUnlimited(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)
	_, err = f.subscriptions.Upgrade(ctx, "bob")
	require.NoError(t, err)

	for i := 0; i < model.BasicDailyDownloadLimit+1; i++ {
		_, err := f.community.Download(ctx, sf.ID, identity("bob"))
		require.NoError(t, err)
	}
	bob, err := f.db.Users().GetUserByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, bob.DownloadsOn("2024-06-01"))
}

func TestDownloadErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.community.Download(ctx, "missing", identity("bob"))
	assert.ErrorIs(t, err, ErrNotFound)

	file := f.seedFile("ann", "a.package")
	sf, err := f.community.Share(ctx, identity("ann"), file.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.blobs.Delete(ctx, file.StoragePath))

	_, err = f.community.Download(ctx, sf.ID, identity("bob"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "File not found in storage", Message(err, ""))

	stored, err := f.db.SharedFiles().GetSharedFileByID(ctx, sf.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.DownloadsCount)
}
