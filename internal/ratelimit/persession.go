package ratelimit

import (
	"sync"
	"time"
)

// PerSessionLimiterConfig configures a PerSessionLimiter instance.
type PerSessionLimiterConfig struct {
	MaxTokens     float64       // Maximum tokens per session (burst capacity)
	RefillRate    float64       // Tokens refilled per second
	CleanupPeriod time.Duration // How often to clean up inactive limiters
}

// PerSessionLimiter tracks rate limits per dialogue session.
// It creates a separate token bucket for each session ID and automatically
// removes buckets that have refilled to capacity.
type PerSessionLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	config   PerSessionLimiterConfig
	onDrop   func()          // Optional callback when a request is dropped
	onUpdate func(count int) // Optional callback when the active count changes
	stopCh   chan struct{}
}

// NewPerSessionLimiter creates a new per-session rate limiter.
//
// Example:
//
//	limiter := NewPerSessionLimiter(PerSessionLimiterConfig{
//	    MaxTokens:     10,
//	    RefillRate:    0.5, // 1 token per 2 seconds
//	    CleanupPeriod: 5 * time.Minute,
//	})
//	defer limiter.Stop()
//
//	if limiter.Allow(sessionID) {
//	    // Process message
//	}
func NewPerSessionLimiter(cfg PerSessionLimiterConfig) *PerSessionLimiter {
	psl := &PerSessionLimiter{
		limiters: make(map[string]*Limiter),
		config:   cfg,
		stopCh:   make(chan struct{}),
	}

	go psl.cleanupLoop()

	return psl
}

// OnDrop sets a callback function that is called when a request is dropped
// due to rate limiting.
func (psl *PerSessionLimiter) OnDrop(fn func()) {
	psl.onDrop = fn
}

// OnUpdate sets a callback function that is called when the active limiter
// count changes.
func (psl *PerSessionLimiter) OnUpdate(fn func(count int)) {
	psl.onUpdate = fn
}

// Allow checks if a request for the given session is allowed.
// Returns true if allowed (token consumed), false if rate limit exceeded.
func (psl *PerSessionLimiter) Allow(sessionID string) bool {
	if sessionID == "" {
		return true
	}

	psl.mu.RLock()
	limiter, exists := psl.limiters[sessionID]
	psl.mu.RUnlock()

	if !exists {
		psl.mu.Lock()
		// Double-check after acquiring write lock
		limiter, exists = psl.limiters[sessionID]
		if !exists {
			limiter = New(psl.config.MaxTokens, psl.config.RefillRate)
			psl.limiters[sessionID] = limiter
		}
		psl.mu.Unlock()
	}

	allowed := limiter.Allow()
	if !allowed && psl.onDrop != nil {
		psl.onDrop()
	}
	return allowed
}

// GetAvailable returns the number of available tokens for a session.
// Returns MaxTokens if the session has no limiter yet.
func (psl *PerSessionLimiter) GetAvailable(sessionID string) float64 {
	if sessionID == "" {
		return psl.config.MaxTokens
	}

	psl.mu.RLock()
	limiter, exists := psl.limiters[sessionID]
	psl.mu.RUnlock()

	if !exists {
		return psl.config.MaxTokens
	}

	return limiter.Available()
}

// GetActiveCount returns the number of active limiters.
func (psl *PerSessionLimiter) GetActiveCount() int {
	psl.mu.RLock()
	defer psl.mu.RUnlock()
	return len(psl.limiters)
}

// cleanupLoop periodically removes inactive limiters.
func (psl *PerSessionLimiter) cleanupLoop() {
	ticker := time.NewTicker(psl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-psl.stopCh:
			return
		case <-ticker.C:
			psl.mu.Lock()
			for key, limiter := range psl.limiters {
				if limiter.IsFull() {
					delete(psl.limiters, key)
				}
			}
			activeCount := len(psl.limiters)
			psl.mu.Unlock()

			if psl.onUpdate != nil {
				psl.onUpdate(activeCount)
			}
		}
	}
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times.
func (psl *PerSessionLimiter) Stop() {
	select {
	case <-psl.stopCh:
		// Already stopped
	default:
		close(psl.stopCh)
	}
}
