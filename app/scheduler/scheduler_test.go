package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// MockUpdater counts sync passes.
type MockUpdater struct {
	passes atomic.Int64
}

var _ Updater = (*MockUpdater)(nil)

func (m *MockUpdater) SyncAll(ctx context.Context) {
	m.passes.Add(1)
}

func waitForPasses(t *testing.T, updater *MockUpdater, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if updater.passes.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected at least %d passes, got: %d", want, updater.passes.Load())
}

func TestScheduler_StartTriggersPasses(t *testing.T) {
	updater := &MockUpdater{}
	scheduler := New(updater)

	scheduler.Start(10 * time.Millisecond)
	defer scheduler.Stop()

	if !scheduler.Running() {
		t.Error("Expected scheduler to report running after start")
	}

	waitForPasses(t, updater, 2)
}

func TestScheduler_DoubleStartIgnored(t *testing.T) {
	updater := &MockUpdater{}
	scheduler := New(updater)

	scheduler.Start(10 * time.Millisecond)
	defer scheduler.Stop()

	// Second start must not spawn a second timer.
	scheduler.Start(1 * time.Millisecond)

	waitForPasses(t, updater, 3)
	observed := updater.passes.Load()
	elapsed := 50 * time.Millisecond
	time.Sleep(elapsed)

	// With a single 10ms timer the pass count grows by roughly elapsed/10ms;
	// a stray 1ms timer would add an order of magnitude more.
	grown := updater.passes.Load() - observed
	if grown > 20 {
		t.Errorf("Expected a single active timer, pass count grew by %d in %v", grown, elapsed)
	}
}

func TestScheduler_StopHaltsPasses(t *testing.T) {
	updater := &MockUpdater{}
	scheduler := New(updater)

	scheduler.Start(10 * time.Millisecond)
	waitForPasses(t, updater, 1)

	scheduler.Stop()
	if scheduler.Running() {
		t.Error("Expected scheduler to report stopped")
	}

	// Let any in-flight tick drain, then verify the count is stable.
	time.Sleep(30 * time.Millisecond)
	observed := updater.passes.Load()
	time.Sleep(50 * time.Millisecond)
	if updater.passes.Load() != observed {
		t.Error("Expected no passes after stop")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler := New(&MockUpdater{})

	// Both calls must be safe no-ops.
	scheduler.Stop()
	scheduler.Stop()

	if scheduler.Running() {
		t.Error("Expected scheduler to report stopped")
	}
}

func TestScheduler_NonPositiveIntervalIgnored(t *testing.T) {
	scheduler := New(&MockUpdater{})

	scheduler.Start(0)
	if scheduler.Running() {
		t.Error("Expected zero interval start to be ignored")
	}

	scheduler.Start(-time.Second)
	if scheduler.Running() {
		t.Error("Expected negative interval start to be ignored")
	}
}

func TestScheduler_Restart(t *testing.T) {
	updater := &MockUpdater{}
	scheduler := New(updater)

	scheduler.Start(10 * time.Millisecond)
	waitForPasses(t, updater, 1)
	scheduler.Stop()

	scheduler.Start(10 * time.Millisecond)
	defer scheduler.Stop()

	if !scheduler.Running() {
		t.Error("Expected scheduler to run again after restart")
	}
	before := updater.passes.Load()
	waitForPasses(t, updater, before+1)
}
