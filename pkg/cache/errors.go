package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote cache cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn up to attempts times, doubling delay after
// each retryable failure. Non-retryable errors are returned immediately.
func RetryWithBackoff(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		if lastErr = err; !IsRetryable(err) {
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
