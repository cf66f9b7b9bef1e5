package grab

import (
	"context"
	"time"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// RetryFunc is called before each retry with the upcoming attempt number
// (starting at 2) and the error that caused it.
type RetryFunc func(attempt int, err error)

// RetryDelays returns n exponential backoff delays starting at one second:
// 1s, 2s, 4s, ... A zero or negative n yields no delays.
func RetryDelays(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// FetchWithRetry calls fetch once, then once more after each delay until it
// succeeds. With no delays it makes exactly one attempt.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, delays []time.Duration, onRetry RetryFunc) (string, error) {
	html, err := fetch(ctx, url)
	for i, delay := range delays {
		if err == nil {
			return html, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if onRetry != nil {
			onRetry(i+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}

		html, err = fetch(ctx, url)
	}
	return html, err
}
