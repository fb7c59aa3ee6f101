// Package cache provides a small byte cache used to reuse encoded QR
// rasters across runs.
//
// QR encoding is deterministic for a given payload, so re-running the
// generator over the same roster re-encodes identical images. The cache
// short-circuits that: keys are derived from the payload hash, values
// are the encoded PNG bytes.
//
// Three backends are provided:
//   - [FileCache]: entries as files under a directory (default for CLI use)
//   - [RedisCache]: shared cache for repeated runs on build machines
//   - [NullCache]: disables caching entirely
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
