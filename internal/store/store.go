package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gazestack/gazestack/internal/compute"
)

// trendCap bounds the per-session ring of recent levels.
const trendCap = 120

// Entry is a session's latest metrics together with the time they arrived
// and a ring of its recent levels, newest last.
type Entry struct {
	SessionID string
	Metrics   compute.Metrics
	Trend     []float64
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory metrics store, keyed by session ID.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// TTL returns the configured entry lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Put stores the latest metrics for sessionID, extending its trend ring.
func (s *Store) Put(sessionID string, m compute.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[sessionID]
	if !ok {
		e = &Entry{SessionID: sessionID}
		s.data[sessionID] = e
	}
	e.Metrics = m
	e.UpdatedAt = s.now()
	e.Trend = append(e.Trend, m.ConcentrationLevel)
	if over := len(e.Trend) - trendCap; over > 0 {
		e.Trend = e.Trend[over:]
	}
}

// Get returns a copy of the entry for the given session ID and a boolean
// indicating whether an entry was found. The entry may be stale if TTL has
// elapsed.
func (s *Store) Get(sessionID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[sessionID]
	if !ok {
		return Entry{}, false
	}
	return copyEntry(e), true
}

// List returns copies of all entries whose UpdatedAt is within the TTL.
// Stale entries that have not yet been evicted are excluded.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.UpdatedAt.After(cutoff) {
			out = append(out, copyEntry(e))
		}
	}
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Remove drops a session's entry immediately, ahead of TTL eviction. Used
// when a detector disconnects cleanly.
func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// interval (minimum 1 second) so entries are evicted promptly. Run blocks
// until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted quiet sessions", "count", n)
			}
		}
	}
}

// copyEntry clones an entry so callers never share the trend slice with the
// store's internal state.
func copyEntry(e *Entry) Entry {
	out := *e
	out.Trend = append([]float64(nil), e.Trend...)
	return out
}
