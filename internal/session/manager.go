// Package session owns the per-session engine pairs. Each browsing
// session gets exactly one catalog engine and one cart engine; nothing
// is process-global, so independent sessions (and tests) coexist.
package session

import (
	"sync"

	"catalog-service/internal/cart"
	"catalog-service/internal/catalog"
	"catalog-service/internal/source"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session bundles the engines for one browsing session.
type Session struct {
	ID      string
	Catalog *catalog.Engine
	Cart    *cart.Engine
}

// Manager creates and tracks sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	src    source.Source
	cfg    catalog.Config
	logger *zap.Logger
}

// NewManager creates a session manager wired to the shared catalog
// source and browsing defaults.
func NewManager(src source.Source, cfg catalog.Config) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		src:      src,
		cfg:      cfg,
		logger:   util.GetLogger(),
	}
}

// Create builds a new session with fresh engines.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:      uuid.New().String(),
		Catalog: catalog.NewEngine(m.src, m.cfg),
		Cart:    cart.NewEngine(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	util.SessionsCreatedTotal.Inc()
	util.SessionsActive.Inc()
	m.logger.Info("Session created", zap.String("session_id", s.ID))
	return s
}

// Get returns the session for id, or false if unknown.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok
}

// Close disposes a session. The catalog engine is closed first so any
// fetch still in flight is discarded instead of written to a dead
// session. No-op for unknown ids.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	s.Catalog.Close()
	util.SessionsActive.Dec()
	m.logger.Info("Session closed", zap.String("session_id", id))
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
