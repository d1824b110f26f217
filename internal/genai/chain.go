package genai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
)

// Chain runs an ordered list of completers with per-provider retry and
// cross-provider failover. Identical in-flight prompts are deduplicated
// with singleflight so a burst of equal requests costs one API call.
//
// Failure handling per provider:
//  1. Retryable errors: full-jitter backoff on the same provider
//  2. Fallback errors: move to the next provider in the chain
//  3. Permanent errors (context done): stop immediately
type Chain struct {
	completers []Completer
	retry      RetryConfig
	group      singleflight.Group
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewChain creates a completion chain over the given completers.
// Nil and disabled completers are skipped.
func NewChain(completers []Completer, retry RetryConfig, log *logger.Logger, m *metrics.Metrics) *Chain {
	active := make([]Completer, 0, len(completers))
	for _, c := range completers {
		if c != nil && c.IsEnabled() {
			active = append(active, c)
		}
	}
	return &Chain{
		completers: active,
		retry:      retry,
		log:        log.WithModule("genai"),
		metrics:    m,
	}
}

// Complete runs the prompt through the provider chain.
func (c *Chain) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || len(c.completers) == 0 {
		return "", ErrNoProviders
	}

	key := dedupeKey(prompt)
	result, err, shared := c.group.Do(key, func() (any, error) {
		return c.complete(ctx, prompt)
	})
	if shared && c.metrics != nil {
		c.metrics.RecordSingleflightDedup("genai")
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Chain) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for i, completer := range c.completers {
		provider := completer.Provider()
		start := time.Now()

		result, err := WithRetry(ctx, c.retry, func() (string, error) {
			out, callErr := completer.Complete(ctx, prompt)
			if callErr != nil {
				return "", ClassifyError(provider, callErr)
			}
			return out, nil
		})
		duration := time.Since(start)

		if err == nil {
			if c.metrics != nil {
				c.metrics.RecordLLMRequest(provider.String(), "success", duration.Seconds())
			}
			if i > 0 {
				c.log.WithFields(map[string]any{
					"provider":   provider.String(),
					"chain_rank": i,
				}).Info("completion served by fallback provider")
			}
			return result, nil
		}

		lastErr = err
		if c.metrics != nil {
			c.metrics.RecordLLMRequest(provider.String(), "error", duration.Seconds())
		}
		c.log.WithError(err).WithFields(map[string]any{
			"provider":    provider.String(),
			"duration_ms": duration.Milliseconds(),
		}).Warn("provider failed")

		if IsPermanent(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}

// IsEnabled returns true if at least one provider is active.
func (c *Chain) IsEnabled() bool {
	return c != nil && len(c.completers) > 0
}

// Provider returns the first provider in the chain.
func (c *Chain) Provider() Provider {
	if c == nil || len(c.completers) == 0 {
		return ""
	}
	return c.completers[0].Provider()
}

// Close closes every completer in the chain.
func (c *Chain) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, completer := range c.completers {
		if err := completer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// dedupeKey hashes the prompt so singleflight keys stay small.
func dedupeKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}
