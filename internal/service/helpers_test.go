package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"
	"simsync/internal/repository/memory"
	"simsync/internal/storage"

	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

type fixture struct {
	db            *memory.Store
	blobs         *storage.MemoryStore
	subscriptions *subscriptionService
	community     *communityService
	files         *fileService
	clock         time.Time
	ids           int
}

func newFixture() *fixture {
	f := &fixture{db: memory.NewStore(), blobs: storage.NewMemoryStore(), clock: fixedNow}
	now := func() time.Time { return f.clock }
	newID := func() string { f.ids++; return fmt.Sprintf("id-%d", f.ids) }

	f.subscriptions = NewSubscriptionService(f.db.Users(), zerolog.Nop()).(*subscriptionService)
	f.subscriptions.now = now

	f.community = NewCommunityService(f.db.Files(), f.db.SharedFiles(), f.db.Users(), f.subscriptions, f.blobs, zerolog.Nop()).(*communityService)
	f.community.now = now
	f.community.newID = newID

	f.files = NewFileService(f.db.Files(), f.db.Users(), f.subscriptions, f.blobs, zerolog.Nop()).(*fileService)
	f.files.now = now
	f.files.newID = newID
	return f
}

func identity(uid string) *model.Identity {
	return &model.Identity{UID: uid, Email: uid + "@example.com"}
}

// seedFile stores metadata and a blob owned by uid.
func (f *fixture) seedFile(uid, name string) *model.File {
	f.ids++
	file := &model.File{
		ID:          fmt.Sprintf("file-%d", f.ids),
		UserID:      uid,
		Name:        name,
		Size:        128,
		ContentType: "application/octet-stream",
		UploadDate:  f.clock,
	}
	file.StoragePath = StoragePath(uid, file.ID, name)
	if err := f.db.Files().CreateFile(context.Background(), file); err != nil {
		panic(err)
	}
	if err := f.blobs.Upload(context.Background(), file.StoragePath, file.ContentType, io.LimitReader(zeroReader{}, file.Size), file.Size); err != nil {
		panic(err)
	}
	return file
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

var errStoreDown = errors.New("store unavailable")

// brokenUsers fails every read and write.
type brokenUsers struct{ repository.UserRepository }

func (brokenUsers) GetUserByID(context.Context, string) (*model.User, error) { return nil, errStoreDown }
func (brokenUsers) SaveUser(context.Context, *model.User) error             { return errStoreDown }

// missingUsers reports no users and fails to create them.
type missingUsers struct{ repository.UserRepository }

func (missingUsers) GetUserByID(context.Context, string) (*model.User, error) { return nil, nil }
func (missingUsers) SaveUser(context.Context, *model.User) error             { return errStoreDown }

// stubbornStore refuses to delete blobs.
type stubbornStore struct{ storage.ObjectStore }

func (stubbornStore) Delete(context.Context, string) error { return errStoreDown }
