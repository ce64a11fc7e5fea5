package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader memoizes fetch results per key for a TTL window. Concurrent callers
// for the same key observe at most one underlying fetch in flight.
type Loader struct {
	store Service
	group singleflight.Group
}

// NewLoader creates a Loader backed by the given store.
func NewLoader(store Service) *Loader {
	return &Loader{store: store}
}

// Store exposes the backing cache service.
func (l *Loader) Store() Service { return l.store }

// GetOrFetch returns the cached value for key if one younger than ttl
// exists, otherwise invokes fn once (coalescing concurrent callers) and
// caches its result. Fetch failures are not cached; every expiry is a fresh
// chance to recover.
func GetOrFetch[T any](ctx context.Context, l *Loader, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := lookup[T](ctx, l, key); ok {
		return v, nil
	}

	res, err, _ := l.group.Do(key, func() (interface{}, error) {
		// A caller that held the flight may have populated the store while
		// we queued behind it.
		if v, ok := lookup[T](ctx, l, key); ok {
			return v, nil
		}

		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if b, merr := json.Marshal(v); merr == nil {
			_ = l.store.Set(ctx, key, string(b), ttl)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func lookup[T any](ctx context.Context, l *Loader, key string) (T, bool) {
	var zero T
	var raw string
	if err := l.store.Get(ctx, key, &raw); err != nil {
		return zero, false
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Corrupt entry: drop it and refetch.
		_ = l.store.Delete(ctx, key)
		return zero, false
	}
	return v, true
}
