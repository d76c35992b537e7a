// Package cache provides byte-oriented caching backends for registry
// metadata.
//
// The registry client stores raw HTTP responses here so repeated
// analyses of the same requirement set do not hammer the package index.
// Three backends are provided:
//   - FileCache: per-user on-disk cache for CLI usage
//   - RedisCache: shared cache for multi-instance server deployments
//   - NullCache: caching disabled (tests, --no-cache)
//
// All backends are safe for concurrent use. Concurrent writers for the
// same key are tolerated; the last write wins, which is acceptable for
// idempotent registry responses.
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all caching backends.
type Cache interface {
	// Get retrieves a value by key. The second return value reports
	// whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
