package util

import (
	"context"
	"fmt"
	"time"
)

var sleep = time.Sleep

// WaitFor sleeps for d unless the context is canceled first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Retry runs fn up to attempts times with linear backoff between failures.
// When retryable is non-nil, a failure it rejects aborts the loop immediately.
func Retry[T any](ctx context.Context, attempts int, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return zero, err
		}

		if i == attempts-1 {
			break
		}

		if err := WaitFor(ctx, time.Duration(500*(i+1))*time.Millisecond); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
