// Package storage persists export artifacts and uploaded covers as
// opaque objects addressed by bucket and key. A local-filesystem
// implementation backs dev deployments; tests use the in-memory one.
package storage

import "context"

// Buckets used by the service.
const (
	BucketExports = "exports"
	BucketCovers  = "covers"
)

// ObjectStore writes immutable objects and returns stable URLs for
// them.
type ObjectStore interface {
	// Put stores the object and returns its public URL. Objects are
	// write-once; Put to an existing key replaces nothing and fails.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)

	// Get retrieves a stored object's bytes.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}
