package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/domain/embed"
	"github.com/ernestbuffington/embedkit/internal/domain/progress"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// Manager owns every open session context in the process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*Session

	deps         Deps
	snapshotsDir string
	log          *logging.Logger
}

// NewManager creates a session manager. snapshotsDir is where saved
// sessions live; it is created on first save.
func NewManager(deps Deps, snapshotsDir string) *Manager {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Manager{
		sessions:     make(map[id.SessionID]*Session),
		deps:         deps,
		snapshotsDir: snapshotsDir,
		log:          deps.Logger.Named("session"),
	}
}

// Create opens a session context with its own loop and caches.
// notifier and notices may be nil; a WebSocket client can bind them
// later through SetNotifier.
func (m *Manager) Create(notifier progress.Notifier, notices embed.Notices) *Session {
	s := newSession(m.deps, notifier, notices)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if m.deps.Metrics != nil {
		m.deps.Metrics.SessionsActive.Inc()
	}
	m.log.Info("session opened", zap.String("session_id", s.ID.String()))
	return s
}

// Get retrieves an open session.
func (m *Manager) Get(sid id.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sid]
	return s, ok
}

// List returns every open session.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close tears a session down and forgets it.
func (m *Manager) Close(sid id.SessionID) error {
	m.mu.Lock()
	s, ok := m.sessions[sid]
	if ok {
		delete(m.sessions, sid)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s not found", sid)
	}

	s.Close()
	if m.deps.Metrics != nil {
		m.deps.Metrics.SessionsActive.Dec()
	}
	m.log.Info("session closed", zap.String("session_id", sid.String()))
	return nil
}

// CloseAll tears down every open session, for shutdown.
func (m *Manager) CloseAll() {
	for _, s := range m.List() {
		_ = m.Close(s.ID)
	}
}
