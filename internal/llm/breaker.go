package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ppiankov/findmindisc/internal/logging"
)

// BreakerProvider wraps a Provider with a circuit breaker so a failing
// backend is refused quickly instead of timing out on every query.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker[*AnswerResponse]
}

// WithBreaker wraps p. failures is the number of consecutive failures that
// opens the circuit; cooldown is how long it stays open before a probe.
func WithBreaker(p Provider, failures int, cooldown time.Duration) *BreakerProvider {
	if failures <= 0 {
		failures = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	name := "llm-" + p.Name()
	cb := gobreaker.NewCircuitBreaker[*AnswerResponse](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= uint32(failures)
			if trip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.ConsecutiveFailures).Msg("opening circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("state transition")
		},

		// A caller giving up says nothing about the backend
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerProvider{inner: p, cb: cb}
}

// Name returns the wrapped provider's name
func (b *BreakerProvider) Name() string {
	return b.inner.Name()
}

// IsAvailable reports false while the circuit is open
func (b *BreakerProvider) IsAvailable(ctx context.Context) bool {
	if b.cb.State() == gobreaker.StateOpen {
		return false
	}
	return b.inner.IsAvailable(ctx)
}

// Answer calls the wrapped provider through the breaker
func (b *BreakerProvider) Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	resp, err := b.cb.Execute(func() (*AnswerResponse, error) {
		return b.inner.Answer(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Str("provider", b.Name()).Msg("request rejected by circuit breaker")
			return nil, &CallError{Provider: b.Name(), Err: fmt.Errorf("circuit %s: %w", stateToString(b.cb.State()), err)}
		}
		return nil, err
	}
	return resp, nil
}

// State returns the breaker state as a string
func (b *BreakerProvider) State() string {
	return stateToString(b.cb.State())
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
