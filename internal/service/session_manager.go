package service

import (
	"context"
	"sync"
	"time"

	"polyglot/internal/logger"
	"polyglot/internal/metrics"
	"polyglot/internal/snowflake"
)

// DefaultSessionIdleTimeout closes sessions nobody has typed into for a while.
const DefaultSessionIdleTimeout = 30 * time.Minute

// SessionManager owns the open translation sessions.
type SessionManager interface {
	// Create opens a new idle session.
	Create() *Session
	// Get returns an open session or ErrNotFound.
	Get(id int64) (*Session, error)
	// Close closes and forgets a session.
	Close(id int64) error
	// CloseAll closes every session; used on shutdown.
	CloseAll()
	// SweepIdle closes sessions idle for longer than the idle timeout and
	// returns how many were closed.
	SweepIdle(ctx context.Context) (int, error)
	// Count returns the number of open sessions.
	Count() int
}

type sessionManager struct {
	translator  TranslationService
	opts        SessionOptions
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewSessionManager creates a session manager. Every session shares the
// translator and options.
func NewSessionManager(translator TranslationService, opts SessionOptions, idleTimeout time.Duration) SessionManager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &sessionManager{
		translator:  translator,
		opts:        opts,
		idleTimeout: idleTimeout,
		sessions:    make(map[int64]*Session),
	}
}

func (m *sessionManager) Create() *Session {
	session := NewSession(snowflake.NextID(), m.translator, m.opts)

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	metrics.SessionOpened()
	logger.Info("session created", "module", "service", "action", "create", "resource", "session", "result", "ok", "session_id", session.ID())
	return session
}

func (m *sessionManager) Get(id int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (m *sessionManager) Close(id int64) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	session.Close()
	metrics.SessionClosed()
	logger.Info("session closed", "module", "service", "action", "delete", "resource", "session", "result", "ok", "session_id", id)
	return nil
}

// closeIfIdle closes and forgets id unless it received input after cutoff.
func (m *sessionManager) closeIfIdle(id int64, cutoff time.Time) bool {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if !ok || !session.closeIfIdle(cutoff) {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	metrics.SessionClosed()
	logger.Info("session closed", "module", "service", "action", "delete", "resource", "session", "result", "ok", "session_id", id, "reason", "idle")
	return true
}

func (m *sessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[int64]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
		metrics.SessionClosed()
	}
	if len(sessions) > 0 {
		logger.Info("sessions closed", "module", "service", "action", "delete", "resource", "session", "result", "ok", "count", len(sessions))
	}
}

func (m *sessionManager) SweepIdle(ctx context.Context) (int, error) {
	cutoff := m.opts.Now().Add(-m.idleTimeout)

	m.mu.RLock()
	var idle []int64
	for id, session := range m.sessions {
		if session.LastActivity().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if err := ctx.Err(); err != nil {
			return closed, err
		}
		if m.closeIfIdle(id, cutoff) {
			closed++
		}
	}
	if closed > 0 {
		logger.Info("idle sessions swept", "module", "service", "action", "sweep", "resource", "session", "result", "ok", "count", closed)
	}
	return closed, nil
}

func (m *sessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
