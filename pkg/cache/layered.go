package cache

import (
	"context"
	"time"
)

// LayeredCache implements a two-level cache (L1: memory, L2: Redis).
// Replicas behind a load balancer share the L2 so a fetch done by one
// instance serves the others for the remainder of the TTL.
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
}

// NewLayeredCache creates a layered cache with memory and Redis.
func NewLayeredCache(redisCache *RedisCache, memoryMaxSize int) *LayeredCache {
	if memoryMaxSize <= 0 {
		memoryMaxSize = 1000
	}
	return &LayeredCache{
		memCache:   NewMemoryCache(WithMemoryMaxSize(memoryMaxSize)),
		redisCache: redisCache,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// Write-through: Redis first, then memory
	if err := lc.redisCache.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	if err := lc.redisCache.Get(ctx, key, dest); err != nil {
		return err
	}

	// Promote to L1; the memory copy expires on its own TTL clock, so a
	// short window of staleness relative to Redis is accepted.
	if s, ok := dest.(*string); ok {
		_ = lc.memCache.Set(ctx, key, *s, time.Minute)
	}
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.redisCache.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, err := lc.memCache.Exists(ctx, keys...); err == nil && ok {
		return true, nil
	}
	return lc.redisCache.Exists(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.redisCache.Close()
}
