package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestFetcher(retries int, opts ...FetcherOption) *Fetcher {
	base := []FetcherOption{
		WithMaxRetries(retries),
		WithBaseBackoff(time.Millisecond),
	}
	return NewFetcher(NewClient(WithTimeout(2*time.Second)), append(base, opts...)...)
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": 42.5}`))
	}))
	defer srv.Close()

	var out struct {
		Value float64 `json:"value"`
	}
	f := newTestFetcher(3)
	if err := f.Fetch(context.Background(), "test", &RequestOptions{Method: MethodGet, URL: srv.URL}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != 42.5 {
		t.Fatalf("unexpected value %v", out.Value)
	}
}

func TestFetchRateLimitedExhaustion(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(4)
	err := f.Fetch(context.Background(), "test", &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", got)
	}
}

func TestFetchRecoversAfterServerError(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	f := newTestFetcher(5)
	if err := f.Fetch(context.Background(), "test", &RequestOptions{Method: MethodGet, URL: srv.URL}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK {
		t.Fatalf("expected decoded body")
	}
	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetchFailsFastOnClientError(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(5)
	err := f.Fetch(context.Background(), "test", &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestFetchHonoursContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(NewClient(), WithMaxRetries(5), WithBaseBackoff(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := f.Fetch(ctx, "test", &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("backoff ignored cancellation")
	}
}

type denyAll struct{}

func (denyAll) Allow(string, float64, float64) bool { return false }

func TestFetchLimiterDenialIsRetryable(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	f := newTestFetcher(3, WithLimiter(denyAll{}, 1, 1))
	err := f.Fetch(context.Background(), "test", &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Fatalf("limited fetch must not reach upstream, got %d calls", got)
	}
}
