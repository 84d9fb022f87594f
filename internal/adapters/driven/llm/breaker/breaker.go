// Package breaker guards an LLMService with a circuit breaker so a
// failing provider is not hammered by every question.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default breaker settings.
const (
	DefaultMaxRequests = 3
	DefaultInterval    = 10 * time.Second
	DefaultTimeout     = 30 * time.Second
	DefaultMinRequests = 3
	DefaultFailRatio   = 0.6
)

// Config tunes the breaker.
type Config struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval is the closed-state window after which counts reset.
	Interval time.Duration

	// Timeout is how long the breaker stays open before trying again.
	Timeout time.Duration

	// MinRequests is the number of requests seen before the breaker may trip.
	MinRequests uint32

	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// LLMService wraps an inner LLM service.
type LLMService struct {
	inner   driven.LLMService
	execute *gobreaker.CircuitBreaker
	stream  *gobreaker.TwoStepCircuitBreaker
}

// New wraps inner. Complete and Stream calls are tracked by separate
// breakers sharing the same settings.
func New(inner driven.LLMService, cfg Config) *LLMService {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = DefaultMinRequests
	}
	if cfg.FailureRatio == 0 {
		cfg.FailureRatio = DefaultFailRatio
	}

	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
			},
			IsSuccessful: isSuccessful,
		}
	}

	return &LLMService{
		inner:   inner,
		execute: gobreaker.NewCircuitBreaker(settings(inner.ModelName() + " complete")),
		stream:  gobreaker.NewTwoStepCircuitBreaker(settings(inner.ModelName() + " stream")),
	}
}

// isSuccessful treats caller cancellation as neutral.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Complete calls the inner service unless the breaker is open.
func (s *LLMService) Complete(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	out, err := s.execute.Execute(func() (interface{}, error) {
		return s.inner.Complete(ctx, messages, opts)
	})
	if err != nil {
		return "", translate(err)
	}
	return out.(string), nil
}

// Stream opens an inner stream unless the breaker is open. The outcome is
// recorded when the stream is closed.
func (s *LLMService) Stream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.Stream, error) {
	done, err := s.stream.Allow()
	if err != nil {
		return nil, translate(err)
	}
	inner, err := s.inner.Stream(ctx, messages, opts)
	if err != nil {
		done(isSuccessful(err))
		return nil, err
	}
	return &trackedStream{Stream: inner, done: done}, nil
}

// State reports the breaker state for Complete calls.
func (s *LLMService) State() gobreaker.State {
	return s.execute.State()
}

// ModelName returns the inner model name.
func (s *LLMService) ModelName() string { return s.inner.ModelName() }

// Ping checks the inner service directly.
func (s *LLMService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the inner service.
func (s *LLMService) Close() error { return s.inner.Close() }

func translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return err
}

type trackedStream struct {
	driven.Stream
	done func(success bool)
	once sync.Once
}

func (t *trackedStream) Close() error {
	err := t.Stream.Close()
	t.once.Do(func() {
		t.done(isSuccessful(t.Stream.Err()))
	})
	return err
}
