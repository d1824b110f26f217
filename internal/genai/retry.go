package genai

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// CalculateBackoff returns the wait before the given retry attempt using
// Full Jitter exponential backoff: random(0, min(maxDelay, initial*2^attempt)).
func CalculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	ceiling := cfg.InitialDelay << uint(attempt)
	if ceiling > cfg.MaxDelay || ceiling <= 0 {
		ceiling = cfg.MaxDelay
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(ceiling)))
	if err != nil {
		// crypto/rand failure, fall back to half the ceiling
		return ceiling / 2
	}
	return time.Duration(n.Int64())
}

// Sleep waits for the duration or until the context is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithRetry runs fn until it succeeds, returns a non-retryable error, or
// the attempts are exhausted. Errors from fn must already be classified
// via ClassifyError.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(attempt-1, cfg)
			if llmErr, ok := lastErr.(*LLMError); ok && llmErr.RetryAfter > delay {
				delay = llmErr.RetryAfter
			}
			if err := Sleep(ctx, delay); err != nil {
				return "", lastErr
			}
		}
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
	}
	return "", lastErr
}
