package usecase

import (
	"context"
	"time"

	"github.com/garage-lab/gearbox/pkg/utils/logging"
)

// withRetry runs op up to maxAttempts times, sleeping delay between attempts
// but not after the last. Every error is eligible for retry: generation
// failures are assumed transient, so no error classification happens here.
// On exhaustion the last error is returned unchanged. The sleep is
// context-aware; cancellation aborts the wait.
func withRetry[T any](ctx context.Context, maxAttempts int, delay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		logging.From(ctx).Warn("operation failed",
			"attempt", attempt,
			"maxAttempts", maxAttempts,
			"error", err.Error(),
		)
	}

	return zero, lastErr
}
