package cache

import (
	"context"
	"time"
)

// scoped prefixes every key before delegating to the inner cache.
type scoped struct {
	inner  Cache
	prefix string
}

// Scoped wraps inner so all keys are prefixed with prefix.
// This keeps catalog responses and rendered previews apart when they share
// one redis database or cache directory.
//
//	catalogCache := cache.Scoped(shared, "catalog:")
//	previewCache := cache.Scoped(shared, "preview:")
func Scoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &scoped{inner: inner, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close is a no-op; the inner cache is owned by whoever created it.
func (s *scoped) Close() error { return nil }
