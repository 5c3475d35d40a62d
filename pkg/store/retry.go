package store

import (
	"context"
	"time"

	"github.com/matzehuels/datamapper/pkg/errors"
)

// Retry executes fn up to attempts times with exponential backoff. Only
// STORE_ERROR failures are retried; other errors are returned immediately.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.Retryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// OpenRetry is [Open] for backends that may still be starting, such as a
// redis or mongo container brought up next to the server.
func OpenRetry(ctx context.Context, opts Options, attempts int, delay time.Duration) (Store, error) {
	var s Store
	err := Retry(ctx, attempts, delay, func() error {
		var err error
		s, err = Open(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
