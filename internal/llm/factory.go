package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/findmindisc/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// Providers come back wrapped in a circuit breaker.
func NewProvider(config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "openai":
		p, err = NewOpenAIProvider(config)

	case "anthropic", "claude":
		p, err = NewAnthropicProvider(config)

	case "ollama":
		p, err = NewOllamaProvider(config)

	case "gemini", "google":
		p, err = NewGeminiProvider(context.Background(), config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, gemini)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithBreaker(p, config.BreakerFailures, time.Duration(config.BreakerCooldown)*time.Second), nil
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:        modelConfig.Provider,
		Model:           modelConfig.Model,
		APIKey:          modelConfig.APIKey,
		BaseURL:         modelConfig.BaseURL,
		Timeout:         modelConfig.Timeout,
		MaxTokens:       modelConfig.MaxTokens,
		Temperature:     modelConfig.Temperature,
		Language:        modelConfig.Language,
		BreakerFailures: modelConfig.BreakerFailures,
		BreakerCooldown: modelConfig.BreakerCooldown,
		HTTPProxy:       modelConfig.HTTPProxy,
		HTTPSProxy:      modelConfig.HTTPSProxy,
		NoProxy:         modelConfig.NoProxy,
	}
}

// APIKeyFromEnv returns the conventional environment key for a provider
func APIKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini", "google":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

// LoadConfigFromEnv fills unset credentials and endpoints from the environment
func LoadConfigFromEnv(config Config) Config {
	if config.APIKey == "" {
		config.APIKey = APIKeyFromEnv(config.Provider)
	}
	if config.BaseURL == "" && strings.EqualFold(config.Provider, "ollama") {
		config.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return config
}
