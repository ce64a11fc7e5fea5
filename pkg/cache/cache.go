package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface. Values are stored as strings
// (JSON-encoded by callers) so memory and Redis backends behave identically.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// Key builds a cache key from a source identifier and normalized parameters.
// Parameters are sorted so equivalent requests share an entry.
func Key(source string, params map[string]string) string {
	if len(params) == 0 {
		return source
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(source)
	for _, name := range names {
		fmt.Fprintf(&b, ":%s=%s", name, params[name])
	}
	return b.String()
}
