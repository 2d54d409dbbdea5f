package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by GetJSON when a key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCorrupt is returned by GetJSON when a stored value does not decode.
	ErrCorrupt = errors.New("corrupt cache entry")

	// ErrNetwork marks connection failures of remote backends.
	ErrNetwork = errors.New("network error")
)

// transientError marks a backend failure worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. It returns nil for nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked by Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Retry retries transient failures with exponential backoff.
type Retry struct {
	// Attempts is the total number of calls, at least 1.
	Attempts int
	// Delay is the wait after the first failure; it doubles every attempt.
	Delay time.Duration
}

// DefaultRetry is the policy of the remote backends.
var DefaultRetry = Retry{Attempts: 3, Delay: 100 * time.Millisecond}

// Do calls fn until it succeeds, fails with an error not marked Transient,
// or the attempts are used up. It returns the last error.
func (r Retry) Do(ctx context.Context, fn func() error) error {
	delay := r.Delay
	var err error
	for i := range max(r.Attempts, 1) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}
