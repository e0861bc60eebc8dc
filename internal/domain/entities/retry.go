package entities

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds how often a transient-failure-prone operation is attempted
// and how long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts int
	// Delay returns the pause after the given (1-based) failed attempt.
	Delay func(attempt int) time.Duration
}

// LinearBackoff sleeps n seconds after the n-th failed attempt.
func LinearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

// NewRetryPolicy returns a policy with linear backoff.
func NewRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, Delay: LinearBackoff}
}

// Retry invokes op until it succeeds or MaxAttempts consecutive failures happened.
// The last error is returned wrapped with ErrRetriesExhausted. Sleeping between
// attempts blocks the caller but stops early when ctx is cancelled.
func Retry(ctx context.Context, policy RetryPolicy, op func(ctx context.Context, attempt int) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := policy.Delay
	if delay == nil {
		delay = LinearBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = op(ctx, attempt); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry interrupted after attempt %d: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}
