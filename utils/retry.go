package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned by Do when every attempt asked for a retry.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryableError asks RetryConfig.Do to wait Wait and try again.
type RetryableError struct {
	Wait time.Duration
	Err  error
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// RetryAfter marks err as retryable after wait.
func RetryAfter(wait time.Duration, err error) error {
	return &RetryableError{Wait: wait, Err: err}
}

// RetryConfig holds the parameters for the retry strategy. The wait between
// attempts is chosen per failure by the operation itself.
type RetryConfig struct {
	MaxAttempts int
	Logger      *Logger

	// Sleep defaults to a context-aware timer. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs fn up to MaxAttempts times. fn receives the 1-based attempt number
// and returns nil on success, a RetryAfter error to be retried, or any other
// error to stop immediately. Do reports how many retries it performed.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func(attempt int) error) (int, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	retries := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return retries, err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return retries, nil
		}

		var retryable *RetryableError
		if !errors.As(lastErr, &retryable) {
			return retries, lastErr
		}

		if attempt < maxAttempts {
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
					operationName, attempt, maxAttempts, lastErr, retryable.Wait)
			}
			if err := sleep(ctx, retryable.Wait); err != nil {
				return retries, err
			}
			retries++
		}
	}

	return retries, fmt.Errorf("%s failed after %d attempts: %w: %w",
		operationName, maxAttempts, ErrRetriesExhausted, lastErr)
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
