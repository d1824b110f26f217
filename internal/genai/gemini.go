package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
)

// geminiCompleter polishes chatbot replies via the Gemini API.
// It implements the Completer interface.
type geminiCompleter struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// newGeminiCompleter creates a Gemini-backed completer.
// Returns nil if apiKey is empty (provider disabled).
func newGeminiCompleter(ctx context.Context, apiKey, model string, log *logger.Logger) (*geminiCompleter, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiCompleter{
		client: client,
		model:  model,
		log:    log.WithField("provider", "gemini"),
	}, nil
}

// Complete generates a completion for the prompt.
func (c *geminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrNoProviders
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.4), // low temperature, polish should stay close to the input
		MaxOutputTokens: 300,
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	duration := time.Since(start)

	if err != nil {
		c.log.WithError(err).WithFields(map[string]any{
			"model":       c.model,
			"duration_ms": duration.Milliseconds(),
		}).Warn("completion API call failed")
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(out.String())
	if result == "" {
		return "", ErrEmptyCompletion
	}

	if resp.UsageMetadata != nil {
		c.log.WithFields(map[string]any{
			"model":         c.model,
			"input_tokens":  resp.UsageMetadata.PromptTokenCount,
			"output_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms":   duration.Milliseconds(),
		}).Debug("completion succeeded")
	}

	return result, nil
}

// IsEnabled returns true if the completer is initialized.
func (c *geminiCompleter) IsEnabled() bool {
	return c != nil && c.client != nil
}

// Provider returns the provider type.
func (c *geminiCompleter) Provider() Provider {
	return ProviderGemini
}

// Close releases resources. Safe to call on nil receiver.
func (c *geminiCompleter) Close() error {
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
