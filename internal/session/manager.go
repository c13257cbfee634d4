package session

import (
	"fmt"
	"sort"
	"sync"
)

// Manager tracks named sessions. Names are unique; IDs are UUIDs
// assigned at creation.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// CreateSession creates a named session without starting its child
// process. Fails when the name is taken or the size is degenerate.
func (m *Manager) CreateSession(name string, cfg *Config, cols, rows int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[name]; ok {
		return nil, fmt.Errorf("session: %q already exists", name)
	}
	s, err := New(name, cfg, cols, rows)
	if err != nil {
		return nil, err
	}
	m.sessions[name] = s
	return s, nil
}

// SpawnSession creates a named session and starts its child process.
func (m *Manager) SpawnSession(name string, cfg *Config, cols, rows int) (*Session, error) {
	s, err := m.CreateSession(name, cfg, cols, rows)
	if err != nil {
		return nil, err
	}
	if err := s.Start(cfg); err != nil {
		m.mu.Lock()
		delete(m.sessions, name)
		m.mu.Unlock()
		return nil, err
	}
	return s, nil
}

// GetSession returns the named session, nil when absent.
func (m *Manager) GetSession(name string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[name]
}

// GetOrCreateSession returns the named session, creating it when
// absent. created reports which happened. Lookup and insert happen
// under one critical section, so concurrent callers for the same name
// all receive the same session.
func (m *Manager) GetOrCreateSession(name string, cfg *Config, cols, rows int) (s *Session, created bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[name]; ok {
		return existing, false, nil
	}
	s, err = New(name, cfg, cols, rows)
	if err != nil {
		return nil, false, err
	}
	m.sessions[name] = s
	return s, true, nil
}

// DeleteSession closes and removes the named session.
func (m *Manager) DeleteSession(name string) error {
	m.mu.Lock()
	s, ok := m.sessions[name]
	delete(m.sessions, name)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session: %q not found", name)
	}
	s.Close()
	return nil
}

// SessionCount returns the number of tracked sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ListSessions returns session summaries sorted by name.
func (m *Manager) ListSessions() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	m.mu.RUnlock()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// CloseAll closes every session and empties the manager.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// GenerateSessionName returns the first free "session-N" name.
func (m *Manager) GenerateSessionName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := 0; ; i++ {
		name := fmt.Sprintf("session-%d", i)
		if _, ok := m.sessions[name]; !ok {
			return name
		}
	}
}
