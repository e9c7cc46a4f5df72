// Package cache provides byte-level caches for fetched catalog data and
// rendered artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entry files under ~/.cache/pidforge/ (CLI default)
//   - [RedisCache]: shared cache for multi-instance API deployments
//   - [NullCache]: disables caching
//
// [Scoped] namespaces keys so several consumers can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with an optional TTL.
// A ttl of zero means the entry never expires.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
