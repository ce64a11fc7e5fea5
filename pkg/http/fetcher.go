package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable marks a source whose data could not be obtained after the
// retry budget was spent. Callers map it to an absent value instead of
// propagating a failure.
var ErrUnavailable = errors.New("upstream unavailable")

const maxBackoff = 30 * time.Second

// Limiter gates outbound calls per source key.
type Limiter interface {
	Allow(key string, capacity, refillPerSec float64) bool
}

// FetchObserver receives the outcome of each fetch attempt.
type FetchObserver func(source, outcome string)

// FetcherOption configures Fetcher.
type FetcherOption func(*Fetcher)

// Fetcher performs GET requests against rate-limited upstreams with bounded
// retry and exponential backoff. Transport errors, HTTP 429 and 5xx retry;
// other 4xx fail fast. Either way the final error wraps ErrUnavailable so
// failures never unwind past this boundary as anything else.
type Fetcher struct {
	client        *Client
	maxRetries    int
	baseBackoff   time.Duration
	limiter       Limiter
	limiterCap    float64
	limiterRefill float64
	observe       FetchObserver
}

// NewFetcher creates a resilient fetcher.
func NewFetcher(client *Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		maxRetries:  3,
		baseBackoff: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxRetries < 1 {
		f.maxRetries = 1
	}
	return f
}

// Fetch GETs opts.URL and decodes the JSON body into dest. The source name
// keys the rate limiter and attempt observations.
func (f *Fetcher) Fetch(ctx context.Context, source string, opts *RequestOptions, dest interface{}) error {
	var lastErr error

	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			if err := f.wait(ctx, attempt); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
			}
		}

		retryable, err := f.attempt(ctx, source, opts, dest)
		if err == nil {
			f.observed(source, "ok")
			return nil
		}
		lastErr = err
		if !retryable {
			f.observed(source, "rejected")
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, source, err)
		}
		f.observed(source, "retry")
	}

	f.observed(source, "exhausted")
	return fmt.Errorf("%w: %s after %d attempts: %v", ErrUnavailable, source, f.maxRetries, lastErr)
}

// attempt performs one request. The bool reports whether the failure is
// retryable under the backoff policy.
func (f *Fetcher) attempt(ctx context.Context, source string, opts *RequestOptions, dest interface{}) (bool, error) {
	if f.limiter != nil && !f.limiter.Allow(source, f.limiterCap, f.limiterRefill) {
		return true, fmt.Errorf("local rate limit for %s", source)
	}

	resp, err := f.client.SendRequest(ctx, opts)
	if err != nil {
		return true, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := DecodeJSON(resp.Body, dest); err != nil {
			return true, err
		}
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		// Remaining 4xx are request bugs, not upstream weather.
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}
}

// wait blocks for the attempt's backoff slot, doubling from the base and
// honouring cancellation so a stalled source cannot hold the refresh hostage.
func (f *Fetcher) wait(ctx context.Context, attempt int) error {
	delay := f.baseBackoff << (attempt - 1)
	if delay > maxBackoff || delay <= 0 {
		delay = maxBackoff
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fetcher) observed(source, outcome string) {
	if f.observe != nil {
		f.observe(source, outcome)
	}
}

// WithMaxRetries bounds the total number of attempts.
func WithMaxRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseBackoff sets the first retry delay; later delays double from it.
func WithBaseBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.baseBackoff = d
	}
}

// WithLimiter installs a per-source token bucket consulted before each attempt.
func WithLimiter(l Limiter, capacity, refillPerSec float64) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = l
		f.limiterCap = capacity
		f.limiterRefill = refillPerSec
	}
}

// WithObserver records attempt outcomes (ok, retry, rejected, exhausted).
func WithObserver(obs FetchObserver) FetcherOption {
	return func(f *Fetcher) {
		f.observe = obs
	}
}
