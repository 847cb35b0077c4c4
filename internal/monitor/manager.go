package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Manager owns the monitors and visibility trackers of live sessions.
type Manager struct {
	clock    Clock
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	monitors map[string]*Monitor
	trackers map[string]*VisibilityTracker
}

func NewManager(clock Clock, interval time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		clock:    clock,
		interval: interval,
		logger:   logger,
		monitors: make(map[string]*Monitor),
		trackers: make(map[string]*VisibilityTracker),
	}
}

// Watch starts a monitor for target. A session with a running monitor keeps it.
func (m *Manager) Watch(ctx context.Context, target Target, onExpire ExpireFunc) *Monitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := target.ID()
	if mon, ok := m.monitors[id]; ok {
		select {
		case <-mon.Done():
		default:
			return mon
		}
	}

	mon := New(target, m.clock, m.interval, onExpire, m.logger)
	m.monitors[id] = mon
	mon.Start(ctx)

	go func() {
		<-mon.Done()
		m.mu.Lock()
		if m.monitors[id] == mon {
			delete(m.monitors, id)
		}
		m.mu.Unlock()
	}()
	return mon
}

// Monitor returns the running monitor for a session, if any.
func (m *Manager) Monitor(sessionID string) (*Monitor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mon, ok := m.monitors[sessionID]
	return mon, ok
}

// Tracker returns the session's visibility tracker, creating it on first use.
func (m *Manager) Tracker(sessionID string, recorder TabSwitchRecorder) *VisibilityTracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trackers[sessionID]; ok {
		return t
	}
	t := NewVisibilityTracker(recorder)
	m.trackers[sessionID] = t
	return t
}

// Forget stops the monitor and drops the tracker of a session that was reset
// or discarded. The next Watch starts a fresh monitor even if the old loop has
// not exited yet.
func (m *Manager) Forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mon, ok := m.monitors[sessionID]; ok {
		delete(m.monitors, sessionID)
		mon.Stop()
	}
	delete(m.trackers, sessionID)
}
