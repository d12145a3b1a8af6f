package power

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type mockWorkloads struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockWorkloads) StopAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *mockWorkloads) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockRebooter struct {
	mu    sync.Mutex
	calls int
}

func (m *mockRebooter) Reboot() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return nil
}

func (m *mockRebooter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCoordinator(workloads *mockWorkloads, rebooter *mockRebooter) (*Coordinator, *State) {
	state := NewState()
	c := NewCoordinator(state, workloads, rebooter, nil, discardLogger())
	c.SetGrace(5 * time.Millisecond)
	return c, state
}

func TestState_ForwardOnly(t *testing.T) {
	s := NewState()

	if s.ShuttingDown() {
		t.Fatal("fresh state must not be shutting down")
	}
	if !s.beginShutdown() {
		t.Fatal("first transition must succeed")
	}
	if !s.ShuttingDown() {
		t.Fatal("flag must be set after transition")
	}
	if s.beginShutdown() {
		t.Fatal("second transition must be refused")
	}
	if !s.ShuttingDown() {
		t.Fatal("flag must stay set")
	}
}

func TestCoordinator_RunsSequenceOnce(t *testing.T) {
	workloads := &mockWorkloads{}
	rebooter := &mockRebooter{}
	c, state := testCoordinator(workloads, rebooter)

	c.TriggerPowerShutdown()

	if !state.ShuttingDown() {
		t.Error("state must be shutting down after trigger")
	}
	if got := workloads.callCount(); got != 1 {
		t.Errorf("StopAll called %d times, want 1", got)
	}
	if got := rebooter.callCount(); got != 1 {
		t.Errorf("Reboot called %d times, want 1", got)
	}
}

func TestCoordinator_ConcurrentTriggersRunOnce(t *testing.T) {
	workloads := &mockWorkloads{}
	rebooter := &mockRebooter{}
	c, _ := testCoordinator(workloads, rebooter)

	const triggers = 16
	var wg sync.WaitGroup
	for range triggers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.TriggerPowerShutdown()
		}()
	}
	wg.Wait()

	if got := workloads.callCount(); got != 1 {
		t.Errorf("StopAll called %d times under concurrent triggers, want 1", got)
	}
	if got := rebooter.callCount(); got != 1 {
		t.Errorf("Reboot called %d times under concurrent triggers, want 1", got)
	}
}

func TestCoordinator_RepeatTriggerIsNoOp(t *testing.T) {
	workloads := &mockWorkloads{}
	rebooter := &mockRebooter{}
	c, _ := testCoordinator(workloads, rebooter)

	c.TriggerPowerShutdown()
	c.TriggerPowerShutdown()
	c.TriggerPowerShutdown()

	if got := rebooter.callCount(); got != 1 {
		t.Errorf("Reboot called %d times, want 1", got)
	}
}

func TestCoordinator_StopFailureStillReboots(t *testing.T) {
	workloads := &mockWorkloads{err: errors.New("docker not running")}
	rebooter := &mockRebooter{}
	c, _ := testCoordinator(workloads, rebooter)

	c.TriggerPowerShutdown()

	if got := rebooter.callCount(); got != 1 {
		t.Errorf("Reboot called %d times after stop failure, want 1", got)
	}
}

func TestCoordinator_FlagVisibleDuringGrace(t *testing.T) {
	workloads := &mockWorkloads{}
	rebooter := &mockRebooter{}
	state := NewState()
	c := NewCoordinator(state, workloads, rebooter, nil, discardLogger())
	c.SetGrace(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.TriggerPowerShutdown()
		close(done)
	}()

	// The animator must be able to observe the flag while the coordinator
	// sits in the grace wait, i.e. the flag is not held under a lock.
	deadline := time.After(40 * time.Millisecond)
	for !state.ShuttingDown() {
		select {
		case <-deadline:
			t.Fatal("flag not observable during grace period")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if rebooter.callCount() != 0 {
		t.Error("reboot must not happen before the grace period elapses")
	}

	<-done
	if got := rebooter.callCount(); got != 1 {
		t.Errorf("Reboot called %d times, want 1", got)
	}
}
