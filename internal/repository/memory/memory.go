// Package memory holds process-local repositories. Records are copied on the
// way in and out so callers never share maps with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"simsync/internal/model"
	"simsync/internal/repository"
)

// Store keeps every collection behind a single lock.
type Store struct {
	mu          sync.Mutex
	users       map[string]model.User
	files       map[string]model.File
	sharedFiles map[string]model.SharedFile
}

func NewStore() *Store {
	return &Store{
		users:       map[string]model.User{},
		files:       map[string]model.File{},
		sharedFiles: map[string]model.SharedFile{},
	}
}

func (s *Store) Users() repository.UserRepository             { return &userRepo{s} }
func (s *Store) Files() repository.FileRepository             { return &fileRepo{s} }
func (s *Store) SharedFiles() repository.SharedFileRepository { return &sharedFileRepo{s} }

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyUser(u model.User) model.User {
	u.DailyDownloads = copyCounts(u.DailyDownloads)
	if u.PremiumActivatedAt != nil {
		t := *u.PremiumActivatedAt
		u.PremiumActivatedAt = &t
	}
	return u
}

func copySharedFile(sf model.SharedFile) model.SharedFile {
	sf.Ratings = copyCounts(sf.Ratings)
	if sf.UnsharedAt != nil {
		t := *sf.UnsharedAt
		sf.UnsharedAt = &t
	}
	return sf
}

type userRepo struct{ s *Store }

func (r *userRepo) GetUserByID(_ context.Context, userID string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, nil
	}
	out := copyUser(u)
	return &out, nil
}

func (r *userRepo) SaveUser(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.UserID] = copyUser(*u)
	return nil
}

func (r *userRepo) UpdateSubscription(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.SubscriptionTier = u.SubscriptionTier
	cur.SubscriptionStatus = u.SubscriptionStatus
	cur.StorageLimitMB = u.StorageLimitMB
	if u.PremiumActivatedAt != nil {
		t := *u.PremiumActivatedAt
		cur.PremiumActivatedAt = &t
	}
	cur.UpdatedAt = time.Now()
	r.s.users[u.UserID] = cur
	return nil
}

func (r *userRepo) IncrementDailyDownloads(_ context.Context, userID, day string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	counts := copyCounts(cur.DailyDownloads)
	counts[day]++
	cur.DailyDownloads = counts
	cur.UpdatedAt = time.Now()
	r.s.users[userID] = cur
	return nil
}

func (r *userRepo) AddStorageUsed(_ context.Context, userID string, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.StorageUsed += delta
	if cur.StorageUsed < 0 {
		cur.StorageUsed = 0
	}
	cur.UpdatedAt = time.Now()
	r.s.users[userID] = cur
	return nil
}

type fileRepo struct{ s *Store }

func (r *fileRepo) CreateFile(_ context.Context, f *model.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.files[f.ID] = *f
	return nil
}

func (r *fileRepo) GetFileByID(_ context.Context, fileID string) (*model.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[fileID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *fileRepo) ListFilesByUser(_ context.Context, userID string) ([]model.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	files := []model.File{}
	for _, f := range r.s.files {
		if f.UserID == userID {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadDate.After(files[j].UploadDate)
	})
	return files, nil
}

func (r *fileRepo) DeleteFile(_ context.Context, fileID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.files[fileID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.files, fileID)
	return nil
}

type sharedFileRepo struct{ s *Store }

func (r *sharedFileRepo) CreateSharedFile(_ context.Context, sf *model.SharedFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sharedFiles[sf.ID] = copySharedFile(*sf)
	return nil
}

func (r *sharedFileRepo) GetSharedFileByID(_ context.Context, id string) (*model.SharedFile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sf, ok := r.s.sharedFiles[id]
	if !ok {
		return nil, nil
	}
	out := copySharedFile(sf)
	return &out, nil
}

func (r *sharedFileRepo) HasShare(_ context.Context, originalFileID, sharerID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sf := range r.s.sharedFiles {
		if sf.OriginalFileID == originalFileID && sf.SharedByUID == sharerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *sharedFileRepo) ListActive(_ context.Context, limit, offset int) ([]model.SharedFile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	active := []model.SharedFile{}
	for _, sf := range r.s.sharedFiles {
		if sf.IsActive {
			active = append(active, copySharedFile(sf))
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	if offset >= len(active) {
		return []model.SharedFile{}, nil
	}
	end := len(active)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return active[offset:end], nil
}

func (r *sharedFileRepo) UpdateRatings(_ context.Context, sf *model.SharedFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.sharedFiles[sf.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Ratings = copyCounts(sf.Ratings)
	cur.AverageRating = sf.AverageRating
	cur.RatingCount = sf.RatingCount
	r.s.sharedFiles[sf.ID] = cur
	return nil
}

func (r *sharedFileRepo) IncrementDownloads(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.sharedFiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.DownloadsCount++
	r.s.sharedFiles[id] = cur
	return nil
}

func (r *sharedFileRepo) Deactivate(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.sharedFiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.IsActive = false
	cur.UnsharedAt = &at
	r.s.sharedFiles[id] = cur
	return nil
}
