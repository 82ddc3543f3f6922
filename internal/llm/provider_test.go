package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/findmindisc/internal/model"
)

func TestSystemPrompt_Language(t *testing.T) {
	da := SystemPrompt("da")
	assert.Contains(t, da, "Svar på dansk")
	assert.Contains(t, da, "opfind IKKE discs")
	assert.Contains(t, da, "### **[DiscNavn]** af [Producent]")

	assert.Equal(t, da, SystemPrompt(""), "Danish is the default")
	assert.Contains(t, SystemPrompt("EN"), "do NOT invent discs")
}

func TestBuildPrompt(t *testing.T) {
	req := AnswerRequest{
		Query:   "Jeg søger en driver med speed 7-9",
		Context: "\nDiscs fra databasen:\n- Roadrunner (Innova): 9/5/-4/1\n",
	}

	got := BuildPrompt(req, "da")
	assert.True(t, strings.HasPrefix(got, `Spørgsmål: "Jeg søger en driver med speed 7-9"`))
	assert.Contains(t, got, "Kontekst:\nDiscs fra databasen:\n- Roadrunner (Innova): 9/5/-4/1\n")

	assert.Contains(t, BuildPrompt(AnswerRequest{Query: "q"}, "en"), `Question: "q"`)
	assert.NotContains(t, BuildPrompt(AnswerRequest{Query: "q"}, "en"), "Context")

	req.Prompt = "custom"
	assert.Equal(t, "custom", BuildPrompt(req, "da"))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestCallError_Classification(t *testing.T) {
	tests := []struct {
		name      string
		err       *CallError
		retryable bool
		timeout   bool
	}{
		{"deadline", &CallError{Provider: "openai", Err: context.DeadlineExceeded}, true, true},
		{"net timeout", &CallError{Provider: "openai", Err: timeoutErr{}}, true, true},
		{"connection refused", &CallError{Provider: "ollama", Err: errors.New("connection refused")}, true, false},
		{"rate limited", &CallError{Provider: "openai", StatusCode: 429, Err: errors.New("slow down")}, true, false},
		{"server error", &CallError{Provider: "openai", StatusCode: 502, Err: errors.New("bad gateway")}, true, false},
		{"unauthorized", &CallError{Provider: "openai", StatusCode: 401, Err: errors.New("bad key")}, false, false},
		{"forbidden", &CallError{Provider: "openai", StatusCode: 403, Err: errors.New("no")}, false, false},
		{"bad request", &CallError{Provider: "openai", StatusCode: 400, Err: errors.New("bad")}, false, false},
		{"disabled", &CallError{Provider: "", Err: ErrDisabled}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.Retryable())
			assert.Equal(t, tt.timeout, tt.err.Timeout())
			assert.Equal(t, tt.retryable, IsRetryable(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestCallError_Message(t *testing.T) {
	err := &CallError{Provider: "anthropic", StatusCode: 529, Err: errors.New("overloaded")}
	assert.Equal(t, "anthropic call failed (HTTP 529): overloaded", err.Error())

	err = &CallError{Provider: "ollama", Err: errors.New("refused")}
	assert.Equal(t, "ollama call failed: refused", err.Error())
}

func TestNewCallError_KeepsExisting(t *testing.T) {
	inner := &CallError{Provider: "openai", StatusCode: 500, Err: errors.New("boom")}
	assert.Same(t, inner, newCallError("gemini", 0, fmt.Errorf("ctx: %w", inner)))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	assert.Nil(t, p, "empty provider disables the LLM")

	_, err = NewProvider(Config{Provider: "bard"})
	assert.ErrorContains(t, err, "unknown LLM provider")

	_, err = NewProvider(Config{Provider: "openai"})
	assert.ErrorContains(t, err, "API key is required")

	for _, name := range []string{"openai", "Anthropic", "claude", "ollama", "gemini", "google"} {
		p, err := NewProvider(Config{Provider: name, APIKey: "k", Model: "m"})
		require.NoError(t, err, name)
		_, ok := p.(*BreakerProvider)
		assert.True(t, ok, "%s should be wrapped in a breaker", name)
	}
}

func TestConfigFromModel(t *testing.T) {
	mc := model.DefaultConfig().LLM
	mc.Provider = "ollama"
	mc.HTTPSProxy = "http://proxy:3128"

	c := ConfigFromModel(mc)
	assert.Equal(t, "ollama", c.Provider)
	assert.Equal(t, mc.Temperature, c.Temperature)
	assert.Equal(t, "da", c.Language)
	assert.Equal(t, 3, c.BreakerFailures)
	assert.Equal(t, "http://proxy:3128", c.HTTPSProxy)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-env")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	assert.Equal(t, "sk-env", LoadConfigFromEnv(Config{Provider: "openai"}).APIKey)
	assert.Equal(t, "explicit", LoadConfigFromEnv(Config{Provider: "openai", APIKey: "explicit"}).APIKey)
	assert.Equal(t, "g-env", LoadConfigFromEnv(Config{Provider: "gemini"}).APIKey)
	assert.Equal(t, "http://gpu-box:11434", LoadConfigFromEnv(Config{Provider: "ollama"}).BaseURL)
	assert.Empty(t, LoadConfigFromEnv(Config{Provider: "anthropic", APIKey: ""}).BaseURL)
}
