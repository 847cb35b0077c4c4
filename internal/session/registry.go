package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry holds live sessions keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Get returns the session or a NotFoundError.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, &NotFoundError{Kind: "session", ID: id}
	}
	return s, nil
}

// Remove drops the session and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Idle lists Complete or Configuring sessions untouched since before cutoff.
// In-flight attempts are never idle.
func (r *Registry) Idle(cutoff time.Time) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Session
	for _, s := range r.sessions {
		st := s.State()
		if st != Complete && st != Configuring {
			continue
		}
		if s.TouchedAt().Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Sweeper periodically evicts idle sessions from a registry.
type Sweeper struct {
	registry *Registry
	clock    Clock
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	onEvict  func(sessionID string)
}

func NewSweeper(registry *Registry, clock Clock, ttl, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		registry: registry,
		clock:    clock,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// OnEvict registers a callback run for every evicted session id.
func (w *Sweeper) OnEvict(fn func(sessionID string)) {
	w.onEvict = fn
}

// Start runs the sweeper until ctx is done.
func (w *Sweeper) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Sweeper) run(ctx context.Context) {
	w.logger.Info("session sweeper started", "interval", w.interval, "ttl", w.ttl)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep evicts idle sessions once and returns how many were removed.
func (w *Sweeper) Sweep() int {
	if w.ttl <= 0 {
		return 0
	}
	idle := w.registry.Idle(w.clock.Now().Add(-w.ttl))
	removed := 0
	for _, s := range idle {
		if w.registry.Remove(s.ID()) {
			removed++
			if w.onEvict != nil {
				w.onEvict(s.ID())
			}
		}
	}
	if removed > 0 {
		w.logger.Info("idle sessions evicted", "count", removed)
	}
	return removed
}
