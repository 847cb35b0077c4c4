package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Target is the session surface the monitor drives.
type Target interface {
	ID() string
	State() models.SessionState
	Tick(now time.Time) bool
	Remaining(now time.Time) int
}

// TickEvent is broadcast to subscribers once per tick.
type TickEvent struct {
	SessionID        string              `json:"session_id"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	State            models.SessionState `json:"state"`
	Expired          bool                `json:"expired,omitempty"`
}

// ExpireFunc is called once when a tick runs the session out of time.
type ExpireFunc func(sessionID string)

// Monitor ticks one in-progress session until it leaves InProgress.
type Monitor struct {
	target   Target
	clock    Clock
	interval time.Duration
	onExpire ExpireFunc
	logger   *slog.Logger

	mu     sync.Mutex
	subs   map[int]chan TickEvent
	nextID int
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

func New(target Target, clock Clock, interval time.Duration, onExpire ExpireFunc, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		target:   target,
		clock:    clock,
		interval: interval,
		onExpire: onExpire,
		logger:   logger,
		subs:     make(map[int]chan TickEvent),
		done:     make(chan struct{}),
	}
}

// Start runs the tick loop in a goroutine until the session leaves
// InProgress or ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	go m.run(ctx)
}

// Stop asks the tick loop to exit. It does not wait; use Done for that.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed when the tick loop exits.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Subscribe returns a channel of tick events and a cancel func. Slow
// subscribers miss events rather than stall the clock. The channel is closed
// when the monitor stops or cancel is called.
func (m *Monitor) Subscribe() (<-chan TickEvent, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan TickEvent, 4)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextID
	m.nextID++
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
		})
	}
}

func (m *Monitor) run(ctx context.Context) {
	defer m.stop()

	id := m.target.ID()
	m.logger.Debug("session monitor started", "session_id", id, "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("session monitor cancelled", "session_id", id)
			return
		case <-ticker.C:
			if !m.tick() {
				m.logger.Debug("session monitor stopped", "session_id", id, "state", m.target.State())
				return
			}
		}
	}
}

// tick advances the session clock once and reports whether to keep going.
func (m *Monitor) tick() bool {
	now := m.clock.Now()
	expired := m.target.Tick(now)
	state := m.target.State()

	m.broadcast(TickEvent{
		SessionID:        m.target.ID(),
		RemainingSeconds: m.target.Remaining(now),
		State:            state,
		Expired:          expired,
	})

	if expired {
		m.logger.Info("session time expired", "session_id", m.target.ID())
		if m.onExpire != nil {
			m.onExpire(m.target.ID())
		}
	}
	return state == models.StateInProgress
}

func (m *Monitor) broadcast(ev TickEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Monitor) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.cancel != nil {
		m.cancel()
	}
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	close(m.done)
}
