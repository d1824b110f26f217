package ratelimit

import (
	"testing"
	"time"
)

func TestPerSessionLimiter_Allow(t *testing.T) {
	limiter := NewPerSessionLimiter(PerSessionLimiterConfig{
		MaxTokens:     3,
		RefillRate:    1.0,
		CleanupPeriod: 1 * time.Minute,
	})
	defer limiter.Stop()

	// First 3 requests should be allowed
	for i := 0; i < 3; i++ {
		if !limiter.Allow("session1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied
	if limiter.Allow("session1") {
		t.Error("4th request should be denied")
	}

	// Different session should still be allowed
	if !limiter.Allow("session2") {
		t.Error("Different session should be allowed")
	}
}

func TestPerSessionLimiter_EmptyKey(t *testing.T) {
	limiter := NewPerSessionLimiter(PerSessionLimiterConfig{
		MaxTokens:     1,
		RefillRate:    0.1,
		CleanupPeriod: 1 * time.Minute,
	})
	defer limiter.Stop()

	// Empty session ID should always be allowed
	for i := 0; i < 10; i++ {
		if !limiter.Allow("") {
			t.Error("Empty session ID should always be allowed")
		}
	}
}

func TestPerSessionLimiter_OnDrop(t *testing.T) {
	dropCount := 0
	limiter := NewPerSessionLimiter(PerSessionLimiterConfig{
		MaxTokens:     1,
		RefillRate:    0.001,
		CleanupPeriod: 1 * time.Minute,
	})
	limiter.OnDrop(func() {
		dropCount++
	})
	defer limiter.Stop()

	// First request allowed
	limiter.Allow("session1")

	// Second request dropped
	limiter.Allow("session1")

	if dropCount != 1 {
		t.Errorf("Expected 1 drop, got %d", dropCount)
	}
}

func TestPerSessionLimiter_GetAvailable(t *testing.T) {
	limiter := NewPerSessionLimiter(PerSessionLimiterConfig{
		MaxTokens:     10,
		RefillRate:    1.0,
		CleanupPeriod: 1 * time.Minute,
	})
	defer limiter.Stop()

	// Unknown session reports full capacity
	if got := limiter.GetAvailable("session1"); got != 10 {
		t.Errorf("GetAvailable() = %v, want 10", got)
	}

	limiter.Allow("session1")
	if got := limiter.GetAvailable("session1"); got >= 10 {
		t.Errorf("GetAvailable() after Allow = %v, want < 10", got)
	}
}

func TestPerSessionLimiter_Cleanup(t *testing.T) {
	limiter := NewPerSessionLimiter(PerSessionLimiterConfig{
		MaxTokens:     2,
		RefillRate:    100, // Refills fast, so limiters become full quickly
		CleanupPeriod: 20 * time.Millisecond,
	})
	defer limiter.Stop()

	limiter.Allow("session1")
	limiter.Allow("session2")

	if got := limiter.GetActiveCount(); got != 2 {
		t.Fatalf("GetActiveCount() = %d, want 2", got)
	}

	// Wait for refill plus a cleanup cycle
	time.Sleep(100 * time.Millisecond)

	if got := limiter.GetActiveCount(); got != 0 {
		t.Errorf("GetActiveCount() after cleanup = %d, want 0", got)
	}
}

func TestPerSessionLimiter_StopIdempotent(t *testing.T) {
	limiter := NewPerSessionLimiter(PerSessionLimiterConfig{
		MaxTokens:     1,
		RefillRate:    1,
		CleanupPeriod: 1 * time.Minute,
	})

	limiter.Stop()
	limiter.Stop() // Should not panic
}

func TestLLMRateLimiter(t *testing.T) {
	limiter := NewLLMRateLimiter(2, 10, 0, 1*time.Minute, nil)
	defer limiter.Stop()

	// Burst of 2 allowed
	if !limiter.Allow("session1") {
		t.Error("1st LLM call should be allowed")
	}
	if !limiter.Allow("session1") {
		t.Error("2nd LLM call should be allowed")
	}

	// Refill is 10/hour, so the 3rd call is denied
	if limiter.Allow("session1") {
		t.Error("3rd LLM call should be denied")
	}

	if got := limiter.GetAvailable("session2"); got != 2 {
		t.Errorf("GetAvailable() for unknown session = %v, want burst capacity 2", got)
	}
}

func TestLLMRateLimiterDailyLimit(t *testing.T) {
	// Burst large enough that only the daily cap can deny
	limiter := NewLLMRateLimiter(10, 3600, 3, 1*time.Minute, nil)
	defer limiter.Stop()

	for i := range 3 {
		if !limiter.Allow("session1") {
			t.Errorf("call %d should be allowed under daily limit", i+1)
		}
	}
	if limiter.Allow("session1") {
		t.Error("4th call should be denied by the daily limit")
	}
	if got := limiter.GetDailyRemaining("session1"); got != 0 {
		t.Errorf("GetDailyRemaining() = %d, want 0", got)
	}

	// Other sessions track their own quota
	if !limiter.Allow("session2") {
		t.Error("other session should be allowed")
	}
	if got := limiter.GetDailyRemaining("session2"); got != 2 {
		t.Errorf("GetDailyRemaining() = %d, want 2", got)
	}
}

func TestLLMRateLimiterDailyLimitDisabled(t *testing.T) {
	limiter := NewLLMRateLimiter(5, 3600, 0, 1*time.Minute, nil)
	defer limiter.Stop()

	for i := range 5 {
		if !limiter.Allow("session1") {
			t.Errorf("call %d should be allowed with no daily cap", i+1)
		}
	}
	if got := limiter.GetDailyRemaining("session1"); got != -1 {
		t.Errorf("GetDailyRemaining() = %d, want -1 when disabled", got)
	}
}
