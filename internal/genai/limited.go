package genai

import (
	"context"
	"fmt"

	apperrors "github.com/sayeesck/portfolio-chatbot-go/internal/errors"
	"github.com/sayeesck/portfolio-chatbot-go/internal/ratelimit"
)

// ErrRateLimited is returned when a session has exhausted its LLM budget.
// Callers treat it like any other completion failure and fall back to the
// templated reply.
var ErrRateLimited = fmt.Errorf("%w: session LLM budget exhausted", apperrors.ErrRateLimitExceeded)

type rateKeyContextKey struct{}

// WithRateKey attaches the per-session rate limit key to the context.
// The HTTP layer sets this before handing the request to the engine.
func WithRateKey(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, rateKeyContextKey{}, sessionID)
}

// RateKeyFromContext extracts the rate limit key, empty when unset.
func RateKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(rateKeyContextKey{}).(string); ok {
		return v
	}
	return ""
}

// LimitedCompleter enforces a per-session token budget in front of an
// inner completer. Requests without a rate key in the context pass
// through unmetered (the CLI path).
type LimitedCompleter struct {
	inner   Completer
	limiter *ratelimit.LLMRateLimiter
}

// NewLimitedCompleter wraps a completer with per-session rate limiting.
func NewLimitedCompleter(inner Completer, limiter *ratelimit.LLMRateLimiter) *LimitedCompleter {
	return &LimitedCompleter{inner: inner, limiter: limiter}
}

// Complete checks the session budget before delegating.
func (l *LimitedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if key := RateKeyFromContext(ctx); key != "" && l.limiter != nil {
		if !l.limiter.Allow(key) {
			return "", ErrRateLimited
		}
	}
	return l.inner.Complete(ctx, prompt)
}

// IsEnabled delegates to the inner completer.
func (l *LimitedCompleter) IsEnabled() bool {
	return l != nil && l.inner != nil && l.inner.IsEnabled()
}

// Provider delegates to the inner completer.
func (l *LimitedCompleter) Provider() Provider {
	if l == nil || l.inner == nil {
		return ""
	}
	return l.inner.Provider()
}

// Close closes the inner completer. The limiter is owned by the caller.
func (l *LimitedCompleter) Close() error {
	if l == nil || l.inner == nil {
		return nil
	}
	return l.inner.Close()
}
