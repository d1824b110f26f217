// Package genai integrates generative LLM APIs (Gemini, Groq, Cerebras)
// for optional reply polish. The templated engine is always authoritative;
// everything here is best-effort with retry and provider fallback.
//
// Architecture:
//   - Gemini: google.golang.org/genai (official SDK)
//   - Groq/Cerebras: github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback strategy:
//  1. Same model retried with full-jitter exponential backoff
//  2. Next provider in the configured chain
package genai

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible, ultra-fast inference).
	ProviderCerebras Provider = "cerebras"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Completer produces a text completion for a prompt.
// Implementations include Gemini (native), OpenAI-compatible providers,
// and the fallback chain combining them.
type Completer interface {
	// Complete generates a completion for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// IsEnabled returns true if the completer is properly initialized.
	IsEnabled() bool
	// Close releases any resources held by the completer.
	Close() error
	// Provider returns the provider type for metrics.
	Provider() Provider
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int
	// InitialDelay is the base delay before first retry.
	InitialDelay time.Duration
	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	// APIKey is the API key for the provider. Empty disables it.
	APIKey string
	// Model is the model name. Empty uses the provider default.
	Model string
}

// Config holds configuration for all LLM providers.
type Config struct {
	// Providers is the ordered fallback chain.
	// Only providers with API keys are used.
	Providers []Provider

	Gemini   ProviderConfig
	Groq     ProviderConfig
	Cerebras ProviderConfig

	// Retry controls per-provider retry behavior.
	Retry RetryConfig
}

// Default model per provider. Completion polish favors fast, cheap models.
var (
	DefaultGeminiModel   = "gemini-2.5-flash-lite"
	DefaultGroqModel     = "llama-3.1-8b-instant"
	DefaultCerebrasModel = "llama-3.1-8b"

	// DefaultProviders is the default provider order for fallback.
	DefaultProviders = []Provider{ProviderGemini, ProviderGroq, ProviderCerebras}
)

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the default retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// HasProvider returns true if the specified provider has an API key.
func (c *Config) HasProvider(p Provider) bool {
	switch p {
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderGroq:
		return c.Groq.APIKey != ""
	case ProviderCerebras:
		return c.Cerebras.APIKey != ""
	default:
		return false
	}
}

// ProviderConfigFor returns the configuration for a specific provider.
func (c *Config) ProviderConfigFor(p Provider) *ProviderConfig {
	switch p {
	case ProviderGemini:
		return &c.Gemini
	case ProviderGroq:
		return &c.Groq
	case ProviderCerebras:
		return &c.Cerebras
	default:
		return nil
	}
}

// ConfiguredProviders returns the providers with API keys, in chain order.
func (c *Config) ConfiguredProviders() []Provider {
	providers := c.Providers
	if len(providers) == 0 {
		providers = DefaultProviders
	}
	result := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if c.HasProvider(p) {
			result = append(result, p)
		}
	}
	return result
}
