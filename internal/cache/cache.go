package cache

import (
	"context"
	"time"
)

// Cache is a key-value store holding expendable, derivative copies only. It is
// never the source of truth and every caller must tolerate it being empty or
// unavailable.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}
