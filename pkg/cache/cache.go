// Package cache stores rendered graph artifacts keyed by what produced them.
//
// A rendering depends only on the snapshot, the visibility state and the
// output format, so identical requests can be served from cache. Backends:
//   - [FileCache]: per-user directory for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NewNullCache]: caching disabled
//
// Keys come from a [Keyer]; [NewScopedKeyer] namespaces them per root.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/datamapper/pkg/observability"
)

// Default TTLs.
const (
	// GraphTTL bounds serialized graph documents.
	GraphTTL = time.Hour

	// ArtifactTTL bounds rendered SVG, PNG and DOT output.
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Fetch returns the cached value for key, or computes, stores and returns it.
// The boolean reports a cache hit. Failing to store a computed value is not
// an error.
func Fetch(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}

// nullCache never stores anything.
type nullCache struct{}

// NewNullCache returns a cache that always misses. It is used when caching
// is disabled.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (nullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (nullCache) Delete(context.Context, string) error { return nil }

func (nullCache) Close() error { return nil }
