package pipeline

import (
	"context"
	"time"
)

// DefaultRetryDelays are the waits between extraction attempts.
var DefaultRetryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// Retry calls fn until it succeeds, attempts calls have been made, or ctx
// is done. The wait before attempt n+1 is delays[n], reusing the last delay
// once delays run out. Returns the number of calls made and the last error.
func Retry(ctx context.Context, attempts int, delays []time.Duration, fn func(ctx context.Context) error) (int, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt + 1, nil
		}

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return attempt + 1, lastErr
			case <-time.After(retryDelay(delays, attempt)):
			}
		}
	}
	return attempts, lastErr
}

func retryDelay(delays []time.Duration, attempt int) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	if attempt < len(delays) {
		return delays[attempt]
	}
	return delays[len(delays)-1]
}
