package cache

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/ppiankov/findmindisc/internal/llm"
	"github.com/ppiankov/findmindisc/internal/logging"
)

// AnswerKey identifies one provider answer. The system prompt is part of
// the key so a prompt change invalidates old answers.
func AnswerKey(provider, model, language, prompt string) string {
	return Key("answer", provider, model, language, llm.SystemPrompt(language), prompt)
}

// Answers stores raw LLM answers in an underlying Cache
type Answers struct {
	store Cache
	ttl   time.Duration
}

// NewAnswers wraps c. A nil cache yields a no-op store.
func NewAnswers(c Cache, ttl time.Duration) *Answers {
	return &Answers{store: c, ttl: ttl}
}

// Get returns a cached answer
func (a *Answers) Get(key string) (*llm.AnswerResponse, bool) {
	if a == nil || a.store == nil {
		return nil, false
	}
	data, ok := a.store.Get(key)
	if !ok {
		return nil, false
	}
	var resp llm.AnswerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logging.Warn().Err(err).Msg("dropping unreadable cached answer")
		_ = a.store.Delete(key)
		return nil, false
	}
	return &resp, true
}

// Put stores an answer; failures are logged, never returned
func (a *Answers) Put(key string, resp *llm.AnswerResponse) {
	if a == nil || a.store == nil || resp == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Warn().Err(err).Msg("marshal answer for cache")
		return
	}
	if err := a.store.Set(key, data, a.ttl); err != nil {
		logging.Warn().Err(err).Msg("cache write failed")
	}
}
