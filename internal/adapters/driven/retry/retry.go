// Package retry provides bounded exponential backoff for outbound API calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Policy bounds how an operation is retried.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero disables retrying.
	MaxRetries int

	// InitialInterval is the first wait between attempts.
	InitialInterval time.Duration

	// MaxInterval caps a single wait.
	MaxInterval time.Duration

	// MaxElapsedTime caps the total time spent retrying.
	MaxElapsedTime time.Duration
}

// DefaultPolicy returns the policy used for embedding and fetch calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      domain.DefaultMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsedTime:  30 * time.Second,
	}
}

// WithMaxRetries returns a copy of p with MaxRetries replaced.
// Negative values are treated as zero.
func (p Policy) WithMaxRetries(n int) Policy {
	if n < 0 {
		n = 0
	}
	p.MaxRetries = n
	return p
}

// Do runs op until it succeeds, returns a permanent error, the policy is
// exhausted or ctx is cancelled. Errors are retried only when Retryable
// reports true.
func Do(ctx context.Context, p Policy, name string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = p.MaxElapsedTime

	var policy backoff.BackOff = backoff.WithMaxRetries(b, uint64(max(p.MaxRetries, 0)))

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		logger.Debug("%s: attempt %d failed (%v), retrying in %s", name, attempt, err, wait)
	})
}

// StatusError is returned by HTTP adapters for non-2xx responses.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses onto domain errors.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	default:
		return nil
	}
}

// Retryable reports whether err is worth another attempt. Rate limits,
// server errors and transport failures are retryable; other HTTP statuses,
// cancellation and configuration errors are not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500
	}
	var permanent *PermanentError
	return !errors.As(err, &permanent)
}

// PermanentError marks an error that must not be retried, such as a
// malformed response body.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}
