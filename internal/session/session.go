package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/gazestack/gazestack/internal/compute"
	"github.com/gazestack/gazestack/internal/landmark"
)

// Commands accepted by a session over the control channel.
const (
	CommandStart       = "start"
	CommandStop        = "stop"
	CommandRecalibrate = "recalibrate"
)

// Session is one detector's tracker plus the lock that serializes access to
// it. Frames and commands may arrive from different goroutines (ingest
// connection, REST API, tuning reload); the session's mutex is the only
// synchronization the underlying tracker gets.
type Session struct {
	ID        string
	Label     string
	CreatedAt time.Time

	mu      sync.Mutex
	tracker *compute.Tracker
}

// Observe feeds one frame of landmarks to the tracker and returns the
// resulting metrics.
func (s *Session) Observe(points []landmark.Point) compute.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Observe(points)
}

// Command applies a lifecycle command and returns the metrics after it.
func (s *Session) Command(cmd string) (compute.Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd {
	case CommandStart:
		s.tracker.Start()
	case CommandStop:
		s.tracker.Stop()
	case CommandRecalibrate:
		s.tracker.Recalibrate()
	default:
		return s.tracker.Metrics(), fmt.Errorf("session: unknown command %q", cmd)
	}
	return s.tracker.Metrics(), nil
}

// Metrics returns the metrics from the most recent frame or command.
func (s *Session) Metrics() compute.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Metrics()
}

// SetTuning replaces the tracker's tuning. Learned state is kept.
func (s *Session) SetTuning(t compute.Tuning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.SetTuning(t)
}

// Tuning returns the tracker's active tuning.
func (s *Session) Tuning() compute.Tuning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Tuning()
}
