package session

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gazestack/gazestack/internal/compute"
)

// Manager owns all live sessions and the tuning applied to new ones.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	tuning   compute.Tuning
}

// NewManager returns an empty manager. New sessions start with t (clamped).
func NewManager(t compute.Tuning) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		tuning:   t.Normalize(),
	}
}

// Open creates a new session with a generated ID and the manager's current
// tuning. The optional label is a human-readable name supplied by the
// detector.
func (m *Manager) Open(label string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Label:     label,
		CreatedAt: time.Now(),
		tracker:   compute.NewTracker(m.currentTuning()),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("session opened", "session_id", s.ID, "label", label)
	return s
}

// Get returns the session by ID, or nil if it does not exist.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// List returns all live sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close removes a session. Safe to call for IDs that no longer exist.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		slog.Info("session closed", "session_id", id)
	}
}

// SetTuning updates the tuning for future sessions and fans it out to every
// live one.
func (m *Manager) SetTuning(t compute.Tuning) {
	t = t.Normalize()

	m.mu.Lock()
	m.tuning = t
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	for _, s := range live {
		s.SetTuning(t)
	}
	slog.Info("tuning updated", "sessions", len(live))
}

// Tuning returns the tuning applied to new sessions.
func (m *Manager) Tuning() compute.Tuning {
	return m.currentTuning()
}

func (m *Manager) currentTuning() compute.Tuning {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tuning
}
