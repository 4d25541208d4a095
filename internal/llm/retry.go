package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryableFunc is an operation retried by Retry.
type RetryableFunc func() error

type retryConfig struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// RetryOption configures Retry.
type RetryOption func(*retryConfig)

// WithMaxRetries sets the number of retries after the first attempt. Default 3.
func WithMaxRetries(n int) RetryOption {
	return func(c *retryConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialDelay sets the delay before the first retry. Default 1s.
func WithInitialDelay(d time.Duration) RetryOption {
	return func(c *retryConfig) {
		if d > 0 {
			c.initialDelay = d
		}
	}
}

// WithMaxDelay caps the backoff delay. Default 10s.
func WithMaxDelay(d time.Duration) RetryOption {
	return func(c *retryConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry runs fn with exponential backoff until it succeeds, returns a
// Permanent error, runs out of retries, or ctx is done.
func Retry(ctx context.Context, fn RetryableFunc, opts ...RetryOption) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	cfg := &retryConfig{
		maxRetries:   3,
		initialDelay: time.Second,
		maxDelay:     10 * time.Second,
		multiplier:   2.0,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	lastErr := fn()
	for attempt := 1; lastErr != nil && attempt <= cfg.maxRetries; attempt++ {
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		timer := time.NewTimer(backoffDelay(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted during backoff (attempt %d/%d): %w", attempt, cfg.maxRetries, ctx.Err())
		case <-timer.C:
		}

		lastErr = fn()
	}

	if lastErr == nil {
		return nil
	}
	var perm *permanentError
	if errors.As(lastErr, &perm) {
		return perm.err
	}
	if cfg.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("retry failed after %d attempts: %w", cfg.maxRetries+1, lastErr)
}

func backoffDelay(attempt int, cfg *retryConfig) time.Duration {
	delay := time.Duration(float64(cfg.initialDelay) * math.Pow(cfg.multiplier, float64(attempt-1)))
	if delay > cfg.maxDelay {
		return cfg.maxDelay
	}
	return delay
}
