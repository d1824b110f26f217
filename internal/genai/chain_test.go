package genai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/ratelimit"
)

type stubCompleter struct {
	provider Provider
	reply    string
	err      error
	delay    time.Duration
	enabled  bool
	calls    atomic.Int32
}

func (s *stubCompleter) Complete(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubCompleter) IsEnabled() bool    { return s.enabled }
func (s *stubCompleter) Provider() Provider { return s.provider }
func (s *stubCompleter) Close() error       { return nil }

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func testLogger() *logger.Logger {
	return logger.New("error")
}

func TestChainFirstProviderSucceeds(t *testing.T) {
	t.Parallel()
	primary := &stubCompleter{provider: ProviderGemini, reply: "polished", enabled: true}
	secondary := &stubCompleter{provider: ProviderGroq, reply: "other", enabled: true}
	chain := NewChain([]Completer{primary, secondary}, fastRetry(), testLogger(), nil)

	got, err := chain.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "polished" {
		t.Errorf("reply = %q, want polished", got)
	}
	if secondary.calls.Load() != 0 {
		t.Error("secondary should not be called when primary succeeds")
	}
}

func TestChainFallsBackOnFailure(t *testing.T) {
	t.Parallel()
	primary := &stubCompleter{provider: ProviderGemini, err: errors.New("429 rate limit"), enabled: true}
	secondary := &stubCompleter{provider: ProviderGroq, reply: "from groq", enabled: true}
	chain := NewChain([]Completer{primary, secondary}, fastRetry(), testLogger(), nil)

	got, err := chain.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from groq" {
		t.Errorf("reply = %q, want from groq", got)
	}
	if primary.calls.Load() != 1 {
		t.Errorf("primary calls = %d, want 1 (rate limits skip retry)", primary.calls.Load())
	}
}

func TestChainRetriesServerErrors(t *testing.T) {
	t.Parallel()
	primary := &stubCompleter{provider: ProviderGroq, err: errors.New("503 unavailable"), enabled: true}
	chain := NewChain([]Completer{primary}, fastRetry(), testLogger(), nil)

	_, err := chain.Complete(context.Background(), "prompt")
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("error = %v, want ErrAllProvidersFailed", err)
	}
	if primary.calls.Load() != 2 {
		t.Errorf("primary calls = %d, want 2", primary.calls.Load())
	}
}

func TestChainSkipsDisabledCompleters(t *testing.T) {
	t.Parallel()
	disabled := &stubCompleter{provider: ProviderGemini, reply: "never", enabled: false}
	active := &stubCompleter{provider: ProviderGroq, reply: "active", enabled: true}
	chain := NewChain([]Completer{nil, disabled, active}, fastRetry(), testLogger(), nil)

	got, err := chain.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "active" {
		t.Errorf("reply = %q, want active", got)
	}
	if chain.Provider() != ProviderGroq {
		t.Errorf("Provider() = %v, want groq", chain.Provider())
	}
}

func TestChainNoProviders(t *testing.T) {
	t.Parallel()
	chain := NewChain(nil, fastRetry(), testLogger(), nil)
	if chain.IsEnabled() {
		t.Error("empty chain should be disabled")
	}
	if _, err := chain.Complete(context.Background(), "prompt"); !errors.Is(err, ErrNoProviders) {
		t.Errorf("error = %v, want ErrNoProviders", err)
	}
}

func TestChainDeduplicatesConcurrentPrompts(t *testing.T) {
	t.Parallel()
	primary := &stubCompleter{provider: ProviderGemini, reply: "shared", delay: 50 * time.Millisecond, enabled: true}
	chain := NewChain([]Completer{primary}, fastRetry(), testLogger(), nil)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := chain.Complete(context.Background(), "same prompt")
			if err != nil || got != "shared" {
				t.Errorf("Complete = %q, %v", got, err)
			}
		}()
	}
	wg.Wait()

	if calls := primary.calls.Load(); calls != 1 {
		t.Errorf("provider calls = %d, want 1 for identical in-flight prompts", calls)
	}
}

func TestLimitedCompleterEnforcesBudget(t *testing.T) {
	t.Parallel()
	inner := &stubCompleter{provider: ProviderGroq, reply: "ok", enabled: true}
	limiter := ratelimit.NewLLMRateLimiter(2, 1, 0, time.Minute, nil)
	defer limiter.Stop()

	limited := NewLimitedCompleter(inner, limiter)
	ctx := WithRateKey(context.Background(), "session-1")

	for i := range 2 {
		if _, err := limited.Complete(ctx, "p"); err != nil {
			t.Fatalf("request %d: unexpected error %v", i, err)
		}
	}
	if _, err := limited.Complete(ctx, "p"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("third request error = %v, want ErrRateLimited", err)
	}

	// No rate key means no metering.
	if _, err := limited.Complete(context.Background(), "p"); err != nil {
		t.Errorf("unkeyed request error = %v", err)
	}
}

func TestParseProviders(t *testing.T) {
	t.Parallel()
	got := parseProviders([]string{"groq", "bogus", "gemini"})
	if len(got) != 2 || got[0] != ProviderGroq || got[1] != ProviderGemini {
		t.Errorf("parseProviders = %v", got)
	}

	if got := parseProviders(nil); len(got) != len(DefaultProviders) {
		t.Errorf("empty input should use defaults, got %v", got)
	}
}
