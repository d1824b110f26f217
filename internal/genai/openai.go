package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
)

// openaiCompleter polishes chatbot replies via an OpenAI-compatible API.
// It works with any OpenAI-compatible provider (Groq, Cerebras) via custom
// BaseURL and implements the Completer interface.
type openaiCompleter struct {
	client   openai.Client
	model    string
	provider Provider
	log      *logger.Logger
}

// newOpenAICompleter creates a completer for an OpenAI-compatible provider.
// Returns nil if apiKey is empty (provider disabled).
func newOpenAICompleter(_ context.Context, provider Provider, apiKey, model string, log *logger.Logger) (*openaiCompleter, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqModel
		case ProviderCerebras:
			model = DefaultCerebrasModel
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiCompleter{
		client:   client,
		model:    model,
		provider: provider,
		log:      log.WithField("provider", provider.String()),
	}, nil
}

// Complete generates a completion for the prompt.
func (c *openaiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", ErrNoProviders
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.4), // low temperature, polish should stay close to the input
		MaxTokens:   openai.Int(300),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		c.log.WithError(err).WithFields(map[string]any{
			"model":       c.model,
			"duration_ms": duration.Milliseconds(),
		}).Warn("completion API call failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", ErrEmptyCompletion
	}

	if resp.Usage.TotalTokens > 0 {
		c.log.WithFields(map[string]any{
			"model":         c.model,
			"input_tokens":  resp.Usage.PromptTokens,
			"output_tokens": resp.Usage.CompletionTokens,
			"duration_ms":   duration.Milliseconds(),
		}).Debug("completion succeeded")
	}

	return result, nil
}

// IsEnabled returns true if the completer is initialized.
func (c *openaiCompleter) IsEnabled() bool {
	return c != nil
}

// Provider returns the provider type.
func (c *openaiCompleter) Provider() Provider {
	if c == nil {
		return ""
	}
	return c.provider
}

// Close releases resources. Safe to call on nil receiver.
func (c *openaiCompleter) Close() error {
	return nil
}
