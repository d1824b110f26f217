package genai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/sayeesck/portfolio-chatbot-go/internal/errors"
)

// ErrorAction defines what to do when an LLM API call fails.
type ErrorAction int

const (
	// ActionRetry means retry the same provider with backoff.
	ActionRetry ErrorAction = iota
	// ActionFallback means skip to the next provider in the chain.
	ActionFallback
	// ActionFail means the error is permanent for this request.
	ActionFail
)

// String returns a human-readable name for the action.
func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFallback:
		return "fallback"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// LLMError wraps a provider error with a classified action.
type LLMError struct {
	Provider Provider
	Action   ErrorAction
	// RetryAfter is the server-requested wait, if any.
	RetryAfter time.Duration
	Err        error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("%s: %v (action=%s)", e.Provider, e.Err, e.Action)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// ClassifyError inspects a provider error and decides the recovery action.
//
// Rules:
//   - context cancellation/deadline: fail (caller gave up)
//   - rate limits and quota exhaustion: fallback to next provider
//   - auth and invalid-request errors: fallback (misconfiguration,
//     retrying the same provider cannot help)
//   - server errors and transport failures: retry
func ClassifyError(provider Provider, err error) *LLMError {
	if err == nil {
		return nil
	}

	llmErr := &LLMError{Provider: provider, Err: err}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		llmErr.Action = ActionFail
		return llmErr
	}

	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, "rate limit", "too many requests", "429", "quota", "resource_exhausted", "resource has been exhausted"):
		llmErr.Action = ActionFallback
		llmErr.RetryAfter = parseRetryAfter(msg)
	case containsAny(msg, "unauthorized", "invalid api key", "api key not valid", "401", "403", "permission denied"):
		llmErr.Action = ActionFallback
	case containsAny(msg, "invalid request", "400", "model not found", "404", "context length", "decommissioned"):
		llmErr.Action = ActionFallback
	case containsAny(msg, "500", "502", "503", "504", "internal error", "overloaded", "unavailable", "timeout", "connection refused", "connection reset", "eof", "no such host"):
		llmErr.Action = ActionRetry
	default:
		// Unknown errors get one retry before the chain moves on.
		llmErr.Action = ActionRetry
	}

	return llmErr
}

// parseRetryAfter pulls a "retry after Ns" hint out of an error message.
// Returns 0 when no hint is found.
func parseRetryAfter(msg string) time.Duration {
	idx := strings.Index(msg, "retry after")
	if idx < 0 {
		return 0
	}
	rest := strings.TrimSpace(msg[idx+len("retry after"):])
	var digits strings.Builder
	for _, r := range rest {
		if r < '0' || r > '9' {
			break
		}
		digits.WriteRune(r)
	}
	if digits.Len() == 0 {
		return 0
	}
	secs, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// IsRetryable reports whether the error should be retried on the same
// provider.
func IsRetryable(err error) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Action == ActionRetry
	}
	return false
}

// ShouldFallback reports whether the chain should move to the next provider.
func ShouldFallback(err error) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Action == ActionFallback || llmErr.Action == ActionRetry
	}
	return true
}

// IsPermanent reports whether the request as a whole should stop.
func IsPermanent(err error) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Action == ActionFail
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Sentinel errors for the completion chain.
var (
	// ErrNoProviders is returned when no provider has an API key.
	ErrNoProviders = fmt.Errorf("%w: no provider API keys set", apperrors.ErrCompleterDisabled)
	// ErrAllProvidersFailed is returned when every provider in the chain
	// failed for a request.
	ErrAllProvidersFailed = errors.New("all LLM providers failed")
	// ErrEmptyCompletion is returned when a provider responds with no text.
	ErrEmptyCompletion = errors.New("empty completion from provider")
)
