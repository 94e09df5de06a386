package service

import (
	"context"
	"strings"
	"testing"

	"simsync/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	body := "sim save data"

	up, err := f.files.Upload(ctx, identity("ann"), "save.sim", "application/octet-stream", int64(len(body)), strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "ann/"+up.ID+"/save.sim", up.StoragePath)
	assert.NotEmpty(t, up.DownloadURL)
	assert.True(t, up.UploadDate.Equal(fixedNow))

	data, ok := f.blobs.Object(up.StoragePath)
	require.True(t, ok)
	assert.Equal(t, body, string(data))

	stored, err := f.db.Files().GetFileByID(ctx, up.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "ann", stored.UserID)

	ann, err := f.db.Users().GetUserByID(ctx, "ann")
	require.NoError(t, err)
	assert.EqualValues(t, len(body), ann.StorageUsed)
}

func TestUploadStorageLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	limit := int64(model.BasicStorageLimitMB) * 1024 * 1024

	_, err := f.files.Upload(ctx, identity("ann"), "big.bin", "", limit+1, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrStorageLimitExceeded)

	_, err = f.files.Upload(ctx, identity("ann"), "exact.bin", "", limit, strings.NewReader(""))
	require.NoError(t, err)
	_, err = f.files.Upload(ctx, identity("ann"), "one-more.bin", "", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrStorageLimitExceeded)

	_, err = f.subscriptions.Upgrade(ctx, "ann")
	require.NoError(t, err)
	_, err = f.files.Upload(ctx, identity("ann"), "one-more.bin", "", 1, strings.NewReader("x"))
	assert.NoError(t, err, "premium allowance is larger")
}

func TestUploadRequiresName(t *testing.T) {
	f := newFixture()
	_, err := f.files.Upload(context.Background(), identity("ann"), "", "", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListFiles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedFile("ann", "a.package")
	f.seedFile("ann", "b.package")
	f.seedFile("bob", "c.package")

	files, err := f.files.List(ctx, "ann")
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, file := range files {
		assert.Equal(t, "ann", file.UserID)
		assert.NotEmpty(t, file.DownloadURL)
	}

	none, err := f.files.List(ctx, "cy")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteFile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	up, err := f.files.Upload(ctx, identity("ann"), "a.bin", "", 3, strings.NewReader("abc"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.files.Delete(ctx, "missing", "ann"), ErrNotFound)
	assert.ErrorIs(t, f.files.Delete(ctx, up.ID, "bob"), ErrForbidden)

	require.NoError(t, f.files.Delete(ctx, up.ID, "ann"))
	_, ok := f.blobs.Object(up.StoragePath)
	assert.False(t, ok)
	stored, err := f.db.Files().GetFileByID(ctx, up.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	ann, err := f.db.Users().GetUserByID(ctx, "ann")
	require.NoError(t, err)
	assert.EqualValues(t, 0, ann.StorageUsed)
}

func TestDeleteKeepsMetadataWhenBlobDeleteFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedFile("ann", "a.package")

	svc := NewFileService(f.db.Files(), f.db.Users(), f.subscriptions, stubbornStore{f.blobs}, zerolog.Nop())
	err := svc.Delete(ctx, file.ID, "ann")
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)

	stored, err := f.db.Files().GetFileByID(ctx, file.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
