package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ybotello/finstream-backend/internal/cache"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/resilience"
)

// cacheOps gives services failure-tolerant cache access: every error degrades
// to a miss or a no-op, logged but never surfaced, so the read path always
// falls through to the repository.
type cacheOps struct {
	log   *logger.Logger
	exec  *resilience.Executor
	cache cache.Cache
}

func (c *cacheOps) lookup(ctx context.Context, key string, out interface{}) bool {
	if c.cache == nil {
		return false
	}
	var raw []byte
	var hit bool
	err := c.exec.Execute(ctx, resilience.ClassCache, func(ctx context.Context) error {
		b, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			return err
		}
		raw, hit = b, ok
		return nil
	})
	if err != nil {
		c.log.Warn("cache get failed, treating as miss", "key", key, "error", err)
		return false
	}
	if !hit {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("cache entry undecodable, treating as miss", "key", key, "error", err)
		return false
	}
	return true
}

func (c *cacheOps) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.cache == nil || ctx.Err() != nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.exec.Execute(ctx, resilience.ClassCache, func(ctx context.Context) error {
		return c.cache.Set(ctx, key, raw, ttl)
	}); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *cacheOps) invalidate(ctx context.Context, keys ...string) {
	if c.cache == nil || len(keys) == 0 {
		return
	}
	if err := c.exec.Execute(ctx, resilience.ClassCache, func(ctx context.Context) error {
		return c.cache.Remove(ctx, keys...)
	}); err != nil {
		c.log.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
