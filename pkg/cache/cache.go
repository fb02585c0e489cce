// Package cache stores rendered diagram artifacts keyed by their content.
//
// The CLI uses [FileCache] under the user cache directory, the server can
// share a [RedisCache] between replicas, and [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long a rendered artifact stays cached.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases held resources.
	Close() error
}

// ArtifactKey identifies the rendering of a DOT source in one format.
func ArtifactKey(format, dot string) string {
	return hashKey("artifact", format, dot)
}
