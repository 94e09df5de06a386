// Package storage stores file blobs and hands out time-limited download URLs.
package storage

import (
	"context"
	"io"
	"time"
)

// SignedURLTTL is how long a download URL stays valid.
const SignedURLTTL = time.Hour

// ObjectStore is a flat key/blob store.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
