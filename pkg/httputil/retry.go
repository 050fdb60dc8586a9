package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient so [Retry] tries again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy bounds a retry loop.
type Policy struct {
	Attempts int           // total tries, at least 1
	Delay    time.Duration // wait before the second try; doubles after each failure
}

// DefaultPolicy is three attempts starting with a one second delay.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// policy's attempts are used up. It returns ctx.Err() if ctx is cancelled
// while waiting.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.As(err, new(*RetryableError)) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff is [Retry] with [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultPolicy, fn)
}
