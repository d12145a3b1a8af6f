package power

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/caseguard/caseguard/internal/gpio"
)

var errTest = errors.New("line read failed")

type fakeLine struct {
	mu    sync.Mutex
	level gpio.Level
	err   error
}

func (f *fakeLine) Value() (gpio.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level, f.err
}

func (f *fakeLine) Close() error { return nil }

func (f *fakeLine) set(level gpio.Level) {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
}

func testButton(line *fakeLine, action func()) *Button {
	b := NewButton("power", time.Millisecond, action, nil, discardLogger())
	b.BindLine(line)
	return b
}

func TestButton_ConfirmedPressDispatches(t *testing.T) {
	calls := 0
	line := &fakeLine{level: gpio.Low}

	b := testButton(line, func() { calls++ })
	b.HandleEdge()

	if calls != 1 {
		t.Errorf("action called %d times, want 1", calls)
	}
}

func TestButton_BounceIsDiscarded(t *testing.T) {
	calls := 0
	// Line back at the pulled-up idle level after the settle window: the
	// edge was noise, nothing downstream may run.
	line := &fakeLine{level: gpio.High}

	b := testButton(line, func() { calls++ })
	b.HandleEdge()

	if calls != 0 {
		t.Errorf("action called %d times for a bounce, want 0", calls)
	}
}

func TestButton_ReleaseWithinSettleWindow(t *testing.T) {
	calls := 0
	line := &fakeLine{level: gpio.Low}

	b := NewButton("power", 20*time.Millisecond, func() { calls++ }, nil, discardLogger())
	b.BindLine(line)

	go func() {
		time.Sleep(5 * time.Millisecond)
		line.set(gpio.High)
	}()
	b.HandleEdge()

	if calls != 0 {
		t.Errorf("action called %d times for a released press, want 0", calls)
	}
}

func TestButton_ReadErrorIsSwallowed(t *testing.T) {
	calls := 0
	line := &fakeLine{err: errTest}

	b := testButton(line, func() { calls++ })
	b.HandleEdge()

	if calls != 0 {
		t.Errorf("action called %d times after read error, want 0", calls)
	}
}

func TestButton_UnboundLineIsInert(t *testing.T) {
	calls := 0
	b := NewButton("power", time.Millisecond, func() { calls++ }, nil, discardLogger())

	b.HandleEdge()

	if calls != 0 {
		t.Error("unbound button must not dispatch")
	}
}

func TestButton_DoublePressSingleShutdown(t *testing.T) {
	workloads := &mockWorkloads{}
	rebooter := &mockRebooter{}
	c, _ := testCoordinator(workloads, rebooter)

	line := &fakeLine{level: gpio.Low}
	b := testButton(line, c.TriggerPowerShutdown)

	// Two edges within 100ms, as rapid bounce or an impatient user
	// produces. Exactly one shutdown sequence may run.
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.HandleEdge()
		}()
	}
	wg.Wait()

	if got := rebooter.callCount(); got != 1 {
		t.Errorf("Reboot called %d times after double press, want 1", got)
	}
	if got := workloads.callCount(); got != 1 {
		t.Errorf("StopAll called %d times after double press, want 1", got)
	}
}
