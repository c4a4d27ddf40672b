package llm

import (
	"fmt"
	"time"
)

// Config selects and tunes a provider.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini" or "mock".
	Provider string

	Anthropic ProviderConfig
	OpenAI    ProviderConfig
	Gemini    ProviderConfig

	Retry   RetryConfig
	Breaker BreakerConfig

	// Timeout bounds one Complete call, retries included. Zero disables it.
	Timeout time.Duration
}

// ProviderConfig holds per-provider credentials. BaseURL is ignored by
// Gemini.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig is exponential backoff with jitter for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// BreakerConfig trips when at least MinRequests calls were made in an
// Interval and the failure ratio reached FailureThreshold. A zero
// MinRequests disables the breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// modelAliases maps short names to provider model IDs. Unknown names are
// sent as-is.
var modelAliases = map[string]map[string]string{
	"anthropic": {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-20250514",
	},
	"openai": {
		"gpt-4o":       "gpt-4o",
		"gpt-4o-mini":  "gpt-4o-mini",
		"gpt-4.1-mini": "gpt-4.1-mini",
	},
	"gemini": {
		"gemini-flash": "gemini-2.0-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// DefaultConfig returns the anthropic provider with a cheap model, three
// attempts and a breaker that opens after three mostly failing calls.
func DefaultConfig() Config {
	return Config{
		Provider:  "anthropic",
		Anthropic: ProviderConfig{Model: "claude-haiku"},
		OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:    ProviderConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
		Timeout: 30 * time.Second,
	}
}

// Validate checks the provider name and that it has an API key.
func (c Config) Validate() error {
	var pc ProviderConfig
	switch c.Provider {
	case "mock":
		return nil
	case "anthropic":
		pc = c.Anthropic
	case "openai":
		pc = c.OpenAI
	case "gemini":
		pc = c.Gemini
	default:
		return fmt.Errorf("unknown LLM provider %q (want anthropic, openai, gemini or mock)", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("llm.retry.max_attempts must not be negative")
	}
	return nil
}

// providerFor returns the section Provider points at.
func (c Config) providerFor() ProviderConfig {
	switch c.Provider {
	case "openai":
		return c.OpenAI
	case "gemini":
		return c.Gemini
	default:
		return c.Anthropic
	}
}
