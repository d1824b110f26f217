// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrProjectNotFound indicates a project lookup found no close match.
	ErrProjectNotFound = errors.New("project not found")

	// ErrMissingField indicates a profile field a response handler expected is absent.
	ErrMissingField = errors.New("profile field missing")

	// ErrNoConfidentMatch indicates intent matching found nothing above threshold.
	// This is a defined outcome, not a failure; callers map it to the unclear topic.
	ErrNoConfidentMatch = errors.New("no confident intent match")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrCompleterDisabled indicates no generative provider is configured.
	ErrCompleterDisabled = errors.New("completer disabled")

	// ErrSessionNotFound indicates an unknown or expired session ID.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ProviderError represents a generative-provider call failure with context.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("provider error (provider=%s, model=%s): %v", e.Provider, e.Model, e.Err)
	}
	return fmt.Sprintf("provider error (provider=%s): %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error.
func NewProviderError(provider, model string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Model:    model,
		Err:      err,
	}
}
