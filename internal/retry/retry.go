package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmpty is returned by an attempt that succeeded but produced nothing usable.
	ErrEmpty = errors.New("empty result")
	// ErrExhausted wraps the last attempt error once the policy gave up.
	ErrExhausted = errors.New("retry attempts exhausted")
)

// Policy bounds a retry loop with a growing delay between attempts.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultPolicy returns three attempts starting two seconds apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a permanent error, the attempts run out or ctx ends.
// The attempt number passed to fn starts at 1. When all attempts fail the returned error
// matches both ErrExhausted and the last attempt error.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := max(p.MaxAttempts, 1)
	delay := p.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if IsPermanent(err) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return zero, fmt.Errorf("retry canceled after %d attempt(s): %w", attempt, ctx.Err())
			case <-t.C:
			}
			delay = delay * 3 / 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		} else if ctx.Err() != nil {
			return zero, fmt.Errorf("retry canceled after %d attempt(s): %w", attempt, ctx.Err())
		}
	}
	return zero, fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, attempts, lastErr)
}
