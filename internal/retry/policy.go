// Package retry describes how many times, and how politely, a single fetch is attempted.
//
// The Policy value is independent of any HTTP client: Do executes an arbitrary
// attempt function through a failsafe-go retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Policy bounds the attempts made for one identifier.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// BaseDelay is the pause between two attempts.
	BaseDelay time.Duration

	// Jitter randomizes BaseDelay by up to +/- Jitter so consecutive retries
	// don't hit the server on a fixed beat.
	Jitter time.Duration
}

// DefaultPolicy returns 3 attempts spaced by roughly one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Jitter:      500 * time.Millisecond,
	}
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry: max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 || p.Jitter < 0 {
		return fmt.Errorf("retry: delays must not be negative (base=%s, jitter=%s)", p.BaseDelay, p.Jitter)
	}
	if p.Jitter > p.BaseDelay {
		return fmt.Errorf("retry: jitter %s must not exceed base delay %s", p.Jitter, p.BaseDelay)
	}
	return nil
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do stops immediately instead of retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryFunc is notified before each new attempt with the attempt that just failed.
type RetryFunc func(failedAttempt int, err error)

// Do runs fn until it succeeds, returns a permanent error, the context ends,
// or the policy's attempts are exhausted. It returns the last result, the
// number of attempts made and the last error. fn receives the 1-based attempt number.
func Do[R any](ctx context.Context, p Policy, fn func(attempt int) (R, error), onRetry RetryFunc) (R, int, error) {
	var zero R
	if err := p.Validate(); err != nil {
		return zero, 0, err
	}

	builder := retrypolicy.NewBuilder[R]().
		WithMaxAttempts(p.MaxAttempts).
		AbortIf(func(_ R, err error) bool {
			// Per-attempt timeouts stay retryable; only the caller's context ends the loop.
			return IsPermanent(err) || ctx.Err() != nil
		}).
		ReturnLastFailure()
	if p.BaseDelay > 0 {
		builder = builder.WithDelay(p.BaseDelay)
		if p.Jitter > 0 {
			builder = builder.WithJitter(p.Jitter)
		}
	}

	attempts := 0
	if onRetry != nil {
		builder = builder.OnRetry(func(e failsafe.ExecutionEvent[R]) {
			onRetry(attempts, e.LastError())
		})
	}

	result, err := failsafe.With[R](builder.Build()).
		WithContext(ctx).
		GetWithExecution(func(exec failsafe.Execution[R]) (R, error) {
			attempts = exec.Attempts()
			return fn(attempts)
		})
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return result, attempts, err
}
