// Package config provides centralized configuration management for the chat engine.
package config

import (
	"fmt"
	"time"
)

// EngineConfig centralizes all chat-engine tunables.
// This keeps the matching thresholds and limits in one place.
type EngineConfig struct {
	// Matching thresholds
	SpellingSensitivity float64 // Minimum similarity for a spelling correction
	ConfidenceThreshold float64 // Minimum similarity for a fuzzy intent match
	ProjectThreshold    float64 // Minimum similarity for a project-name match

	// Conversation state
	HistoryWindow    int // Transcript entries kept per session (user+bot)
	MaxMessageLength int // Reject user messages longer than this

	// Rate limiting (token bucket)
	SessionRateBurst     float64 // Maximum burst tokens per session
	SessionRateRefillSec float64 // Tokens refilled per second
	LLMBurstTokens       float64 // Maximum burst tokens for LLM polish
	LLMRefillPerHour     float64 // LLM tokens refilled per hour
	LLMDailyLimit        int     // Maximum LLM requests per session per day (0 = disabled)

	// Generative polish
	LLMTimeout time.Duration // Upper bound on a single reply-polish call
}

// DefaultEngineConfig returns default engine tunables.
// The thresholds sit inside the bands the matcher was calibrated for:
// spelling 0.7-0.8, intent confidence 0.6-0.7.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SpellingSensitivity: 0.72,
		ConfidenceThreshold: 0.62,
		ProjectThreshold:    0.60,

		HistoryWindow:    40, // 20 exchanges
		MaxMessageLength: 2000,

		SessionRateBurst:     10.0,
		SessionRateRefillSec: 0.5, // 1 token per 2s
		LLMBurstTokens:       20.0,
		LLMRefillPerHour:     10.0,
		LLMDailyLimit:        100,

		LLMTimeout: CompletionTimeout,
	}
}

// LoadEngineConfig loads engine tunables from environment variables,
// falling back to defaults.
func LoadEngineConfig() EngineConfig {
	cfg := DefaultEngineConfig()

	cfg.SpellingSensitivity = getFloatEnv("ENGINE_SPELLING_SENSITIVITY", cfg.SpellingSensitivity)
	cfg.ConfidenceThreshold = getFloatEnv("ENGINE_CONFIDENCE_THRESHOLD", cfg.ConfidenceThreshold)
	cfg.ProjectThreshold = getFloatEnv("ENGINE_PROJECT_THRESHOLD", cfg.ProjectThreshold)
	cfg.HistoryWindow = getIntEnv("ENGINE_HISTORY_WINDOW", cfg.HistoryWindow)
	cfg.MaxMessageLength = getIntEnv("ENGINE_MAX_MESSAGE_LENGTH", cfg.MaxMessageLength)
	cfg.SessionRateBurst = getFloatEnv("SESSION_RATE_BURST", cfg.SessionRateBurst)
	cfg.SessionRateRefillSec = getFloatEnv("SESSION_RATE_REFILL_PER_SEC", cfg.SessionRateRefillSec)
	cfg.LLMBurstTokens = getFloatEnv("LLM_BURST_TOKENS", cfg.LLMBurstTokens)
	cfg.LLMRefillPerHour = getFloatEnv("LLM_REFILL_PER_HOUR", cfg.LLMRefillPerHour)
	cfg.LLMDailyLimit = getIntEnv("LLM_DAILY_LIMIT", cfg.LLMDailyLimit)
	cfg.LLMTimeout = getDurationEnv("LLM_TIMEOUT", cfg.LLMTimeout)

	return cfg
}

// Validate checks if the configuration is valid.
// Returns error describing validation failures.
func (c *EngineConfig) Validate() error {
	if c.SpellingSensitivity < 0.5 || c.SpellingSensitivity > 1.0 {
		return fmt.Errorf("spelling sensitivity must be in [0.5, 1.0], got %v", c.SpellingSensitivity)
	}
	if c.ConfidenceThreshold < 0.5 || c.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("confidence threshold must be in [0.5, 1.0], got %v", c.ConfidenceThreshold)
	}
	if c.ProjectThreshold <= 0 || c.ProjectThreshold > 1.0 {
		return fmt.Errorf("project threshold must be in (0, 1.0], got %v", c.ProjectThreshold)
	}
	if c.HistoryWindow < 2 {
		return fmt.Errorf("history window must hold at least one exchange, got %d", c.HistoryWindow)
	}
	if c.HistoryWindow%2 != 0 {
		return fmt.Errorf("history window must be even (user+bot pairs), got %d", c.HistoryWindow)
	}
	if c.MaxMessageLength < 1 {
		return fmt.Errorf("max message length must be positive, got %d", c.MaxMessageLength)
	}
	if c.SessionRateBurst <= 0 || c.SessionRateRefillSec <= 0 {
		return fmt.Errorf("session rate limits must be positive, got burst=%v refill=%v",
			c.SessionRateBurst, c.SessionRateRefillSec)
	}
	if c.LLMBurstTokens <= 0 || c.LLMRefillPerHour <= 0 {
		return fmt.Errorf("llm rate limits must be positive, got burst=%v refill=%v",
			c.LLMBurstTokens, c.LLMRefillPerHour)
	}
	if c.LLMDailyLimit < 0 {
		return fmt.Errorf("llm daily limit cannot be negative, got %d", c.LLMDailyLimit)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %v", c.LLMTimeout)
	}
	return nil
}

// Timeout constants for operations with external dependencies.
const (
	// CompletionTimeout bounds a single LLM polish call.
	CompletionTimeout = 5 * time.Second

	// ChatLogWriteTimeout bounds a chat-log insert so a slow disk never
	// delays the HTTP reply path.
	ChatLogWriteTimeout = 2 * time.Second
)
