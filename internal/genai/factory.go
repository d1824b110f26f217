package genai

import (
	"context"
	"fmt"

	"github.com/sayeesck/portfolio-chatbot-go/internal/config"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
)

// NewChainFromConfig builds the provider chain from application config.
// Returns (nil, nil) when no provider has an API key, so callers can
// treat polish as an optional feature.
func NewChainFromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Chain, error) {
	gcfg := Config{
		Providers: parseProviders(cfg.LLMProviders),
		Gemini:    ProviderConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel},
		Groq:      ProviderConfig{APIKey: cfg.GroqAPIKey, Model: cfg.GroqModel},
		Cerebras:  ProviderConfig{APIKey: cfg.CerebrasAPIKey, Model: cfg.CerebrasModel},
		Retry:     DefaultRetryConfig(),
	}

	providers := gcfg.ConfiguredProviders()
	if len(providers) == 0 {
		return nil, nil //nolint:nilnil // Intentional: polish disabled when no API key
	}

	completers := make([]Completer, 0, len(providers))
	for _, p := range providers {
		pc := gcfg.ProviderConfigFor(p)
		completer, err := newCompleter(ctx, p, pc.APIKey, pc.Model, log)
		if err != nil {
			return nil, fmt.Errorf("init %s completer: %w", p, err)
		}
		completers = append(completers, completer)
		log.WithFields(map[string]any{
			"provider": p.String(),
			"model":    pc.Model,
		}).Info("LLM provider configured")
	}

	return NewChain(completers, gcfg.Retry, log, m), nil
}

func newCompleter(ctx context.Context, p Provider, apiKey, model string, log *logger.Logger) (Completer, error) {
	if p == ProviderGemini {
		return newGeminiCompleter(ctx, apiKey, model, log)
	}
	return newOpenAICompleter(ctx, p, apiKey, model, log)
}

// parseProviders converts config strings to providers, dropping unknown
// names. An empty result falls back to the default chain order.
func parseProviders(names []string) []Provider {
	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		switch Provider(name) {
		case ProviderGemini, ProviderGroq, ProviderCerebras:
			providers = append(providers, Provider(name))
		}
	}
	if len(providers) == 0 {
		return DefaultProviders
	}
	return providers
}
