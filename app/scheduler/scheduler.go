package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Updater runs one full synchronization pass over every stored feed.
type Updater interface {
	SyncAll(ctx context.Context)
}

// Scheduler owns at most one repeating timer that triggers full-catalog sync
// passes. It is an explicit object constructed once and passed by reference;
// there is no package-level state.
type Scheduler struct {
	updater Updater

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

func New(updater Updater) *Scheduler {
	return &Scheduler{updater: updater}
}

// Start begins periodic passes at the given interval. Starting while a timer
// is already active is a no-op that only logs a warning; the existing timer
// keeps its schedule.
func (s *Scheduler) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Warn("Scheduler already running, start ignored", "interval", interval)
		return
	}
	if interval <= 0 {
		slog.Warn("Scheduler interval must be positive, start ignored", "interval", interval)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	go s.loop(ctx, interval)

	slog.Info("Scheduler started", "interval", interval)
}

// Stop cancels the timer and clears the running state. An in-flight pass is
// not interrupted; only future ticks are prevented. Stopping an inactive
// scheduler is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.cancel = nil
	s.running = false

	slog.Info("Scheduler stopped")
}

// Running reports whether a timer is currently active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// loop runs each pass synchronously, so overlapping passes from one scheduler
// are structurally impossible: a tick that fires while a pass is still running
// is simply absorbed by the ticker.
func (s *Scheduler) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The pass gets its own context: cancelling the scheduler must
			// not cut a pass short.
			s.updater.SyncAll(context.Background())
		}
	}
}
