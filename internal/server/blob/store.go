// Package blob abstracts the opaque byte storage behind the file records.
// The core treats it as put/get/delete/exists keyed by path; the production
// implementation is any S3-compatible backend (MinIO in dev).
package blob

import (
	"context"
	"io"
)

// Store is the opaque blob storage consumed by the file and sweeper
// services.
type Store interface {
	// Put stores the bytes read from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Get returns a reader over the blob and its length.
	// Returns common.ErrorNotFound when the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}
