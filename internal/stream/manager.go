package stream

import (
	"log/slog"
	"sync"
)

// Manager tracks live detection sessions for health reporting.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger.With("component", "session-manager"),
	}
}

func (m *Manager) Register(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session registered", "session_id", s.ID)
}

func (m *Manager) Unregister(sessionID string) {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		m.logger.Info("session unregistered", "session_id", sessionID)
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// TotalFrames sums the frame counters of all live sessions.
func (m *Manager) TotalFrames() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total uint64
	for _, s := range m.sessions {
		total += s.FrameCount()
	}
	return total
}
