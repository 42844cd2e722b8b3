// internal/session/retry.go
package session

import (
	"context"
	"time"

	"cinema-sage/internal/common/errors"
	"cinema-sage/internal/common/metrics"
)

// Retrier re-runs an operation on retryable failures, doubling the wait
// between attempts.
type Retrier struct {
	maxAttempts int
	backoff     time.Duration
	onRetry     func(attempt int, err error)
}

// NewRetrier allows maxAttempts attempts in total (minimum 1).
func NewRetrier(maxAttempts int, backoff time.Duration) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{maxAttempts: maxAttempts, backoff: backoff}
}

// OnRetry registers a hook called before each re-run.
func (r *Retrier) OnRetry(fn func(attempt int, err error)) {
	r.onRetry = fn
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The last error is wrapped in RETRIES_EXHAUSTED.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			if r.onRetry != nil {
				r.onRetry(attempt+1, lastErr)
			}
			metrics.SessionRetries.Inc()

			wait := r.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return errors.NewRetriesExhaustedError(attempts, ctx.Err())
			case <-time.After(wait):
			}
		}

		attempts++
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.IsRetryable(lastErr) {
			break
		}
	}

	return errors.NewRetriesExhaustedError(attempts, lastErr)
}
