package jobs

import (
	"context"
	"log"
	"time"
)

type retryOptions struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// withRetry runs op with exponential backoff until it succeeds or the
// attempt budget is spent, returning the last error.
func withRetry(ctx context.Context, op func() error, opts retryOptions) error {
	if opts.maxAttempts <= 0 {
		opts.maxAttempts = 3
	}
	if opts.initialDelay <= 0 {
		opts.initialDelay = 500 * time.Millisecond
	}
	if opts.maxDelay <= 0 {
		opts.maxDelay = 10 * time.Second
	}
	if opts.multiplier <= 0 {
		opts.multiplier = 2.0
	}

	delay := opts.initialDelay
	var lastErr error

	for attempt := 1; attempt <= opts.maxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == opts.maxAttempts {
			break
		}

		log.Printf("batch attempt %d/%d failed, retrying in %s: %v",
			attempt, opts.maxAttempts, delay, lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * opts.multiplier)
		if delay > opts.maxDelay {
			delay = opts.maxDelay
		}
	}

	return lastErr
}
