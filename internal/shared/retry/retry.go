// Package retry wraps sethvargo/go-retry with the engine's retry policy:
// only transient I/O errors are retried, at most three attempts with
// exponential backoff. Never call this while holding a serial lock.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	apperrors "serialhub/internal/shared/errors"
)

const (
	maxAttempts = 3
	baseBackoff = 100 * time.Millisecond
)

// Transient runs fn, retrying up to three times with exponential backoff as
// long as the returned error is a TransientIOError. Any other error aborts
// immediately.
func Transient(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(baseBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if apperrors.IsTransientIOError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
