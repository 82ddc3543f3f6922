package model

// Config is the complete FindMinDisc configuration
type Config struct {
	Catalog      CatalogConfig      `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	LLM          LLMConfig          `json:"llm" yaml:"llm" mapstructure:"llm"`
	Pipeline     PipelineConfig     `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Flight       FlightConfig       `json:"flight" yaml:"flight" mapstructure:"flight"`
	Cache        CacheConfig        `json:"cache" yaml:"cache" mapstructure:"cache"`
	Corrections  CorrectionsConfig  `json:"corrections" yaml:"corrections" mapstructure:"corrections"`
	Batch        BatchConfig        `json:"batch" yaml:"batch" mapstructure:"batch"`
	RateLimiting RateLimitingConfig `json:"rate_limiting" yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Logging      LoggingConfig      `json:"logging" yaml:"logging" mapstructure:"logging"`
	Output       OutputConfig       `json:"output" yaml:"output" mapstructure:"output"`
}

// CatalogConfig controls where disc data comes from
type CatalogConfig struct {
	Source     string     `json:"source" yaml:"source" mapstructure:"source"`             // "" = embedded dataset, path or http(s) URL
	Timeout    int        `json:"timeout" yaml:"timeout" mapstructure:"timeout"`          // seconds, for URL sources
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
}

// LLMConfig holds the answer provider settings
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider" mapstructure:"provider"`          // openai, anthropic, ollama, gemini
	Model       string  `json:"model" yaml:"model" mapstructure:"model"`
	APIKey      string  `json:"-" yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `json:"timeout" yaml:"timeout" mapstructure:"timeout"`             // seconds
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	Language    string  `json:"language" yaml:"language" mapstructure:"language"`          // da or en

	// Circuit breaker around provider calls
	BreakerFailures int `json:"breaker_failures" yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerCooldown int `json:"breaker_cooldown" yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"` // seconds

	HTTPProxy  string `json:"http_proxy,omitempty" yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `json:"https_proxy,omitempty" yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `json:"no_proxy,omitempty" yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// PipelineConfig tunes the post-processing steps
type PipelineConfig struct {
	MaxDiscs              int  `json:"max_discs" yaml:"max_discs" mapstructure:"max_discs"`
	ContextDiscs          int  `json:"context_discs" yaml:"context_discs" mapstructure:"context_discs"`                               // Catalog discs offered to the LLM
	CorrectionWindowLines int  `json:"correction_window_lines" yaml:"correction_window_lines" mapstructure:"correction_window_lines"`
	PruneRejected         bool `json:"prune_rejected" yaml:"prune_rejected" mapstructure:"prune_rejected"`
	Simulate              bool `json:"simulate" yaml:"simulate" mapstructure:"simulate"`
}

// FlightConfig controls the simulator
type FlightConfig struct {
	Throw string `json:"throw" yaml:"throw" mapstructure:"throw"` // backhand or forehand
}

// CacheConfig controls the LLM answer cache
type CacheConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" yaml:"dir" mapstructure:"dir"`
	TTL     int    `json:"ttl" yaml:"ttl" mapstructure:"ttl"`                // hours
	MaxSize int    `json:"max_size" yaml:"max_size" mapstructure:"max_size"` // MB
}

// CorrectionsConfig controls the persistent correction log
type CorrectionsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	DBPath  string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// BatchConfig controls concurrent query processing
type BatchConfig struct {
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
	Timeout int `json:"timeout" yaml:"timeout" mapstructure:"timeout"` // seconds per query
}

// RateLimitingConfig limits calls per provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `json:"burst_size" yaml:"burst_size" mapstructure:"burst_size"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`    // debug, info, warn, error
	Format string `json:"format" yaml:"format" mapstructure:"format"` // console or json
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format        string `json:"format" yaml:"format" mapstructure:"format"`                         // text, json, markdown
	IncludeFlight bool   `json:"include_flight" yaml:"include_flight" mapstructure:"include_flight"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Timeout:    15,
			Thresholds: DefaultThresholds(),
		},
		LLM: LLMConfig{
			Provider:        "",
			Timeout:         60,
			MaxTokens:       1500,
			Temperature:     0.3,
			Language:        "da",
			BreakerFailures: 3,
			BreakerCooldown: 30,
		},
		Pipeline: PipelineConfig{
			MaxDiscs:              4,
			ContextDiscs:          20,
			CorrectionWindowLines: 8,
			PruneRejected:         true,
			Simulate:              true,
		},
		Flight: FlightConfig{
			Throw: string(ThrowBackhand),
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "~/.findmindisc/cache",
			TTL:     24,
			MaxSize: 100,
		},
		Corrections: CorrectionsConfig{
			Enabled: false,
			DBPath:  "~/.findmindisc/corrections.db",
		},
		Batch: BatchConfig{
			Workers: 4,
			Timeout: 120,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1.0,
			BurstSize:         2,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Output: OutputConfig{
			Format:        "text",
			IncludeFlight: false,
		},
	}
}
