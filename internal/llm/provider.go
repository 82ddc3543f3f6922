package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the LLM collaborator: it turns a query plus catalog context
// into free-form answer text. Nothing about the answer is trusted.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Answer asks the model to answer the query using the supplied context
	Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AnswerRequest contains the input for one answer
type AnswerRequest struct {
	// Query is the user's raw question
	Query string

	// Context lists the catalog discs and constraints assembled by the pipeline
	Context string

	// Prompt overrides the default prompt built from Query and Context
	Prompt string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AnswerResponse contains the model's raw answer
type AnswerResponse struct {
	// Text is the answer exactly as generated
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	Temperature float32

	// Language of the system prompt: "da" or "en"
	Language string

	// Circuit breaker: consecutive failures before opening, seconds before retrying
	BreakerFailures int
	BreakerCooldown int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:        "", // Disabled by default
		Timeout:         60,
		MaxTokens:       1500,
		Temperature:     0.3,
		Language:        "da",
		BreakerFailures: 3,
		BreakerCooldown: 30,
	}
}

const (
	defaultMaxTokens = 1500
	defaultTimeout   = 60 // seconds
)

func (c Config) maxTokens(override int) int {
	if override > 0 {
		return override
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return defaultMaxTokens
}

func (c Config) model(override, fallback string) string {
	if override != "" {
		return override
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

// SystemPrompt returns the standing instructions in the configured language
func SystemPrompt(language string) string {
	if strings.EqualFold(language, "en") {
		return systemPromptEN
	}
	return systemPromptDA
}

const systemPromptDA = `Du er en venlig disc golf ekspert der hjælper brugere med at finde de rigtige discs.

REGLER:
1. Svar på dansk, venligt og hjælpsomt
2. Vælg KUN discs fra listen i konteksten, opfind IKKE discs
3. Brug PRÆCIS de flight numbers fra listen i formatet Speed/Glide/Turn/Fade
4. Anbefal 2-4 discs
5. For nybegyndere: anbefal understabile discs og lavere speed
6. Overhold speed-kravet hvis der er et

Format for hver disc:
### **[DiscNavn]** af [Producent]
- Flight: X/X/X/X
- Hvorfor: [kort begrundelse]`

const systemPromptEN = `You are a friendly disc golf expert helping players find the right discs.

RULES:
1. Answer in English, friendly and helpful
2. Choose ONLY discs from the list in the context, do NOT invent discs
3. Use EXACTLY the flight numbers from the list in the format Speed/Glide/Turn/Fade
4. Recommend 2-4 discs
5. For beginners: recommend understable discs and lower speed
6. Respect the speed requirement if there is one

Format for each disc:
### **[DiscName]** by [Manufacturer]
- Flight: X/X/X/X
- Why: [short reason]`

// BuildPrompt constructs the user prompt from the query and its context
func BuildPrompt(req AnswerRequest, language string) string {
	if req.Prompt != "" {
		return req.Prompt
	}

	question, contextLabel := "Spørgsmål", "Kontekst"
	if strings.EqualFold(language, "en") {
		question, contextLabel = "Question", "Context"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %q\n", question, req.Query)
	if strings.TrimSpace(req.Context) != "" {
		fmt.Fprintf(&b, "\n%s:\n%s\n", contextLabel, strings.TrimSpace(req.Context))
	}
	return b.String()
}
