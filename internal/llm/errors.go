package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrDisabled is returned when no provider is configured
var ErrDisabled = errors.New("no LLM provider configured")

// CallError is a failed or timed-out call to the answer provider.
// It is surfaced to the caller and never retried inside the pipeline.
type CallError struct {
	Provider   string
	StatusCode int // HTTP status, 0 for transport failures
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s call failed (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed later: timeouts,
// transport failures, rate limiting, server errors and an open circuit.
// Rejected credentials and malformed requests are not retryable.
func (e *CallError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
		return true
	case e.StatusCode >= 400:
		return false
	}
	if errors.Is(e.Err, ErrDisabled) {
		return false
	}
	return true
}

// Timeout reports whether the call ran out of time
func (e *CallError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// BreakerOpen reports whether the call was refused by the circuit breaker
func (e *CallError) BreakerOpen() bool {
	return errors.Is(e.Err, gobreaker.ErrOpenState) || errors.Is(e.Err, gobreaker.ErrTooManyRequests)
}

// IsRetryable reports whether err is a retryable CallError
func IsRetryable(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.Retryable()
}

func newCallError(provider string, status int, err error) *CallError {
	var existing *CallError
	if errors.As(err, &existing) {
		return existing
	}
	return &CallError{Provider: provider, StatusCode: status, Err: err}
}
