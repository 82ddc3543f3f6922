package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/util"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks that the configured model can be fetched
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.Models.Get(ctx, p.config.model("", defaultGeminiModel), nil); err != nil {
		logging.Warn().Err(err).Str("provider", p.Name()).Msg("API check failed")
		return false
	}
	return true
}

// Answer generates an answer with GenerateContent
func (p *GeminiProvider) Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	model := p.config.model(req.Model, defaultGeminiModel)

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(p.config.Language), genai.RoleUser),
		Temperature:       genai.Ptr(p.config.Temperature),
		MaxOutputTokens:   int32(p.config.maxTokens(req.MaxTokens)),
	}

	result, err := p.client.Models.GenerateContent(ctxWithTimeout, model,
		genai.Text(BuildPrompt(req, p.config.Language)), genConfig)
	if err != nil {
		return nil, newCallError(p.Name(), geminiStatus(err), err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, newCallError(p.Name(), 0, errors.New("no text in response"))
	}

	tokens := 0
	if result.UsageMetadata != nil {
		tokens = int(result.UsageMetadata.TotalTokenCount)
	}

	return &AnswerResponse{
		Text:       text,
		Model:      model,
		TokensUsed: tokens,
	}, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
