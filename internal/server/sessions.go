// Package server exposes the chatbot over HTTP: session management,
// the gin handlers, and the background jobs around the chat log.
package server

import (
	"sync"
	"time"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chat"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
)

type sessionEntry struct {
	session *chat.Session
	created time.Time
}

// SessionManager tracks live conversations keyed by session ID.
// Idle sessions are evicted after the TTL so abandoned browser tabs do
// not pin memory.
type SessionManager struct {
	engine  *chat.Engine
	ttl     time.Duration
	log     *logger.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSessionManager creates a manager and starts its eviction loop.
func NewSessionManager(engine *chat.Engine, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *SessionManager {
	// Check at a fraction of the TTL so eviction lag stays small.
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	return newSessionManager(engine, ttl, interval, log, m)
}

func newSessionManager(engine *chat.Engine, ttl, evictEvery time.Duration, log *logger.Logger, m *metrics.Metrics) *SessionManager {
	sm := &SessionManager{
		engine:   engine,
		ttl:      ttl,
		log:      log.WithModule("sessions"),
		metrics:  m,
		sessions: make(map[string]*sessionEntry),
		stopCh:   make(chan struct{}),
	}
	go sm.evictLoop(evictEvery)
	return sm
}

// GetOrCreate returns the session for id, creating a fresh one when the
// id is empty or unknown. The second return value is the session ID to
// hand back to the client.
func (sm *SessionManager) GetOrCreate(id string) (*chat.Session, string) {
	if id != "" {
		sm.mu.RLock()
		entry, ok := sm.sessions[id]
		sm.mu.RUnlock()
		if ok {
			return entry.session, id
		}
	}

	sess := sm.engine.NewSession()
	sm.mu.Lock()
	sm.sessions[sess.ID()] = &sessionEntry{session: sess, created: time.Now()}
	count := len(sm.sessions)
	sm.mu.Unlock()

	sm.setGauge(count)
	return sess, sess.ID()
}

// Get returns the session for id, or nil when unknown.
func (sm *SessionManager) Get(id string) *chat.Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if entry, ok := sm.sessions[id]; ok {
		return entry.session
	}
	return nil
}

// Remove drops a session.
func (sm *SessionManager) Remove(id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	count := len(sm.sessions)
	sm.mu.Unlock()
	sm.setGauge(count)
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// LastInteraction returns the most recent activity across all sessions.
// The zero time means no conversation has happened yet.
func (sm *SessionManager) LastInteraction() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var last time.Time
	for _, entry := range sm.sessions {
		if t := entry.session.LastInteraction(); t.After(last) {
			last = t
		}
	}
	return last
}

// Stop terminates the eviction loop. Safe to call multiple times.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stopCh) })
}

func (sm *SessionManager) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stopCh:
			return
		case <-ticker.C:
			sm.evictIdle()
		}
	}
}

func (sm *SessionManager) evictIdle() {
	cutoff := time.Now().Add(-sm.ttl)

	sm.mu.Lock()
	evicted := 0
	for id, entry := range sm.sessions {
		last := entry.session.LastInteraction()
		if last.IsZero() {
			last = entry.created
		}
		if last.Before(cutoff) {
			delete(sm.sessions, id)
			evicted++
		}
	}
	count := len(sm.sessions)
	sm.mu.Unlock()

	sm.setGauge(count)
	if evicted > 0 {
		sm.log.WithFields(map[string]any{
			"evicted":   evicted,
			"remaining": count,
		}).Debug("evicted idle sessions")
	}
}

func (sm *SessionManager) setGauge(count int) {
	if sm.metrics != nil {
		sm.metrics.ActiveSessions.Set(float64(count))
	}
}
