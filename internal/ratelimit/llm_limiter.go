package ratelimit

import (
	"sync"
	"time"

	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
)

// LLMRateLimiter tracks per-session LLM usage with hourly and daily limits.
// This is separate from the general session limiter so the expensive reply
// polish calls are throttled independently from regular message processing.
type LLMRateLimiter struct {
	psl        *PerSessionLimiter
	maxPerHour float64
	dailyLimit int
	onDrop     func()

	mu   sync.Mutex
	day  string // UTC date the daily counters belong to
	used map[string]int
}

// NewLLMRateLimiter creates a new LLM rate limiter with per-hour and
// per-day limits. dailyLimit 0 disables the daily cap.
//
// The hourly limiter uses a token bucket with:
//   - maxTokens = burst (burst capacity)
//   - refillRate = maxPerHour / 3600 (tokens per second)
//
// Example:
//
//	limiter := NewLLMRateLimiter(20, 10, 100, 5*time.Minute, metrics)
//	defer limiter.Stop()
//
//	if limiter.Allow(sessionID) {
//	    // Make LLM polish call
//	}
func NewLLMRateLimiter(burst, maxPerHour float64, dailyLimit int, cleanup time.Duration, m *metrics.Metrics) *LLMRateLimiter {
	llm := &LLMRateLimiter{
		maxPerHour: maxPerHour,
		dailyLimit: dailyLimit,
		used:       make(map[string]int),
	}

	llm.psl = NewPerSessionLimiter(PerSessionLimiterConfig{
		MaxTokens:     burst,
		RefillRate:    maxPerHour / 3600.0,
		CleanupPeriod: cleanup,
	})

	if m != nil {
		llm.onDrop = func() {
			m.RecordRateLimiterDrop("llm")
		}
		llm.psl.OnDrop(llm.onDrop)
	}

	return llm
}

// Allow checks if an LLM call from sessionID is allowed under both limits.
// Returns true if allowed (token consumed and daily use counted), false if
// either limit is exceeded.
func (llm *LLMRateLimiter) Allow(sessionID string) bool {
	if llm.dailyLimitReached(sessionID) {
		if llm.onDrop != nil {
			llm.onDrop()
		}
		return false
	}
	if !llm.psl.Allow(sessionID) {
		return false
	}
	llm.recordDailyUse(sessionID)
	return true
}

// dailyLimitReached reports whether the session has used its daily quota.
// Counters reset when the UTC date rolls over.
func (llm *LLMRateLimiter) dailyLimitReached(sessionID string) bool {
	if llm.dailyLimit <= 0 || sessionID == "" {
		return false
	}

	llm.mu.Lock()
	defer llm.mu.Unlock()
	llm.rollDayLocked()
	return llm.used[sessionID] >= llm.dailyLimit
}

// recordDailyUse counts a granted call against the session's daily quota.
func (llm *LLMRateLimiter) recordDailyUse(sessionID string) {
	if llm.dailyLimit <= 0 || sessionID == "" {
		return
	}

	llm.mu.Lock()
	defer llm.mu.Unlock()
	llm.rollDayLocked()
	llm.used[sessionID]++
}

func (llm *LLMRateLimiter) rollDayLocked() {
	today := time.Now().UTC().Format("2006-01-02")
	if llm.day != today {
		llm.day = today
		llm.used = make(map[string]int)
	}
}

// GetAvailable returns the number of remaining hourly tokens for a session.
func (llm *LLMRateLimiter) GetAvailable(sessionID string) float64 {
	return llm.psl.GetAvailable(sessionID)
}

// GetDailyRemaining returns how many daily calls the session has left.
// Returns -1 when the daily cap is disabled.
func (llm *LLMRateLimiter) GetDailyRemaining(sessionID string) int {
	if llm.dailyLimit <= 0 {
		return -1
	}

	llm.mu.Lock()
	defer llm.mu.Unlock()
	llm.rollDayLocked()
	remaining := llm.dailyLimit - llm.used[sessionID]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetActiveCount returns the current number of active session limiters.
func (llm *LLMRateLimiter) GetActiveCount() int {
	return llm.psl.GetActiveCount()
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times.
func (llm *LLMRateLimiter) Stop() {
	llm.psl.Stop()
}
