package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chat"
	"github.com/sayeesck/portfolio-chatbot-go/internal/chat/search"
	"github.com/sayeesck/portfolio-chatbot-go/internal/config"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
)

func newTestManager(t *testing.T, ttl time.Duration) (*SessionManager, *chat.Engine) {
	t.Helper()
	p := testProfile()
	log := logger.New("error")
	idx := search.NewProjectIndex(log)
	require.NoError(t, idx.Initialize(p.Projects))

	engine := chat.NewEngine(p, idx, config.DefaultEngineConfig(), log, nil)
	sm := NewSessionManager(engine, ttl, log, nil)
	t.Cleanup(sm.Stop)
	return sm, engine
}

func TestGetOrCreate(t *testing.T) {
	sm, _ := newTestManager(t, time.Minute)

	sess, id := sm.GetOrCreate("")
	require.NotNil(t, sess)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, sm.Count())

	same, sameID := sm.GetOrCreate(id)
	assert.Same(t, sess, same)
	assert.Equal(t, id, sameID)
	assert.Equal(t, 1, sm.Count())

	// Unknown id mints a fresh session instead of resurrecting the old one.
	other, otherID := sm.GetOrCreate("expired-id")
	assert.NotSame(t, sess, other)
	assert.NotEqual(t, "expired-id", otherID)
	assert.Equal(t, 2, sm.Count())
}

func TestGetAndRemove(t *testing.T) {
	sm, _ := newTestManager(t, time.Minute)

	_, id := sm.GetOrCreate("")
	assert.NotNil(t, sm.Get(id))
	assert.Nil(t, sm.Get("ghost"))

	sm.Remove(id)
	assert.Nil(t, sm.Get(id))
	assert.Zero(t, sm.Count())
}

func TestEvictIdleSessions(t *testing.T) {
	p := testProfile()
	log := logger.New("error")
	idx := search.NewProjectIndex(log)
	require.NoError(t, idx.Initialize(p.Projects))
	engine := chat.NewEngine(p, idx, config.DefaultEngineConfig(), log, nil)

	sm := newSessionManager(engine, 50*time.Millisecond, 10*time.Millisecond, log, nil)
	t.Cleanup(sm.Stop)

	active, _ := sm.GetOrCreate("")
	idle, _ := sm.GetOrCreate("")
	_ = idle

	require.Equal(t, 2, sm.Count())

	// Touch one session on every poll so only the idle one ages out.
	require.Eventually(t, func() bool {
		engine.ProcessMessage(context.Background(), active, "hi")
		return sm.Count() == 1
	}, time.Second, 5*time.Millisecond)
	assert.NotNil(t, sm.Get(active.ID()))
}

func TestLastInteraction(t *testing.T) {
	sm, engine := newTestManager(t, time.Minute)

	assert.True(t, sm.LastInteraction().IsZero())

	sess, _ := sm.GetOrCreate("")
	engine.ProcessMessage(context.Background(), sess, "hi")
	assert.False(t, sm.LastInteraction().IsZero())
}

func TestStopIsIdempotent(t *testing.T) {
	sm, _ := newTestManager(t, time.Minute)
	sm.Stop()
	sm.Stop()
}
