package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	mu        sync.Mutex
	name      string
	available bool
	response  *AnswerResponse
	err       error
	calls     int
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func (m *MockProvider) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestBreakerProvider_PassesThrough(t *testing.T) {
	mock := &MockProvider{name: "mock", available: true, response: &AnswerResponse{Text: "Volt"}}
	b := WithBreaker(mock, 2, time.Minute)

	resp, err := b.Answer(context.Background(), AnswerRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "Volt", resp.Text)
	assert.Equal(t, "mock", b.Name())
	assert.True(t, b.IsAvailable(context.Background()))
	assert.Equal(t, "closed", b.State())
}

func TestBreakerProvider_OpensAfterConsecutiveFailures(t *testing.T) {
	upstream := &CallError{Provider: "mock", StatusCode: 503, Err: errors.New("unavailable")}
	mock := &MockProvider{name: "mock", available: true, err: upstream}
	b := WithBreaker(mock, 2, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := b.Answer(context.Background(), AnswerRequest{})
		assert.ErrorIs(t, err, upstream)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.Answer(context.Background(), AnswerRequest{})
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.True(t, callErr.BreakerOpen())
	assert.True(t, callErr.Retryable())
	assert.Equal(t, 2, mock.callCount(), "open circuit must not reach the provider")
	assert.False(t, b.IsAvailable(context.Background()))
}

func TestBreakerProvider_HalfOpenProbeCloses(t *testing.T) {
	mock := &MockProvider{name: "mock", err: errors.New("down"), response: &AnswerResponse{Text: "ok"}}
	b := WithBreaker(mock, 1, 20*time.Millisecond)

	_, err := b.Answer(context.Background(), AnswerRequest{})
	require.Error(t, err)
	assert.Equal(t, "open", b.State())

	mock.setErr(nil)
	time.Sleep(40 * time.Millisecond)

	resp, err := b.Answer(context.Background(), AnswerRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, "closed", b.State())
}

func TestBreakerProvider_CancellationDoesNotTrip(t *testing.T) {
	mock := &MockProvider{name: "mock", err: context.Canceled}
	b := WithBreaker(mock, 1, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := b.Answer(context.Background(), AnswerRequest{})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", b.State())
}
