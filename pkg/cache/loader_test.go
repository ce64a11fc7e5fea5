package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyNormalization(t *testing.T) {
	a := Key("simple_price", map[string]string{"ids": "bitcoin,ethereum", "vs": "usd"})
	b := Key("simple_price", map[string]string{"vs": "usd", "ids": "bitcoin,ethereum"})
	if a != b {
		t.Fatalf("equivalent params must share a key: %q vs %q", a, b)
	}
	if Key("global", nil) != "global" {
		t.Fatalf("bare source key changed")
	}
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	l := NewLoader(NewMemoryCache())
	defer l.Store().Close()

	var calls int64
	fetch := func(context.Context) (float64, error) {
		atomic.AddInt64(&calls, 1)
		return 58.29, nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := GetOrFetch(ctx, l, "global", time.Minute, fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 58.29 {
			t.Fatalf("unexpected value %v", v)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected exactly one fetch, got %d", got)
	}
}

func TestGetOrFetchExpiry(t *testing.T) {
	l := NewLoader(NewMemoryCache())
	defer l.Store().Close()

	var calls int64
	fetch := func(context.Context) (int, error) {
		return int(atomic.AddInt64(&calls, 1)), nil
	}

	ctx := context.Background()
	if v, _ := GetOrFetch(ctx, l, "fng", 10*time.Millisecond, fetch); v != 1 {
		t.Fatalf("unexpected first value %d", v)
	}
	time.Sleep(20 * time.Millisecond)
	if v, _ := GetOrFetch(ctx, l, "fng", 10*time.Millisecond, fetch); v != 2 {
		t.Fatalf("expected refetch after expiry, got %d", v)
	}
}

func TestGetOrFetchDoesNotCacheFailures(t *testing.T) {
	l := NewLoader(NewMemoryCache())
	defer l.Store().Close()

	var calls int64
	boom := errors.New("boom")
	fetch := func(context.Context) (int, error) {
		if atomic.AddInt64(&calls, 1) == 1 {
			return 0, boom
		}
		return 7, nil
	}

	ctx := context.Background()
	if _, err := GetOrFetch(ctx, l, "markets", time.Minute, fetch); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	v, err := GetOrFetch(ctx, l, "markets", time.Minute, fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Fatalf("unexpected value %d", v)
	}
}

func TestGetOrFetchCoalescesConcurrentCallers(t *testing.T) {
	l := NewLoader(NewMemoryCache())
	defer l.Store().Close()

	var calls int64
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return "greed", nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := GetOrFetch(context.Background(), l, "sentiment", time.Minute, fetch)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = v
		}(i)
	}

	// Give the goroutines a moment to pile onto the same key.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected a single in-flight fetch, got %d", got)
	}
	for i, v := range results {
		if v != "greed" {
			t.Fatalf("caller %d got %q", i, v)
		}
	}
}
