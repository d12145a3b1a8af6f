package workloads

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakeConn struct {
	mu      sync.Mutex
	stopped []string
	fail    map[string]error
	closed  bool
}

func (f *fakeConn) StopUnitContext(_ context.Context, name string, mode string, _ chan<- string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mode != "replace" {
		return 0, errors.New("unexpected mode " + mode)
	}
	if err := f.fail[name]; err != nil {
		return 0, err
	}
	f.stopped = append(f.stopped, name)
	return 1, nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func fakeSystemdUnits(units []string, conn *fakeConn) *SystemdUnits {
	s := NewSystemdUnits(units, discardLogger())
	s.connect = func(context.Context) (unitConn, error) { return conn, nil }
	return s
}

func TestSystemdUnits_StopsAllUnits(t *testing.T) {
	conn := &fakeConn{}
	s := fakeSystemdUnits([]string{"retroarch.service", "kodi.service"}, conn)

	if err := s.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll() error = %v", err)
	}
	if len(conn.stopped) != 2 || conn.stopped[0] != "retroarch.service" || conn.stopped[1] != "kodi.service" {
		t.Errorf("stopped = %v, want both units in order", conn.stopped)
	}
	if !conn.closed {
		t.Error("connection not closed after StopAll")
	}
}

func TestSystemdUnits_FailureDoesNotSkipRemaining(t *testing.T) {
	conn := &fakeConn{fail: map[string]error{"retroarch.service": errors.New("no such unit")}}
	s := fakeSystemdUnits([]string{"retroarch.service", "kodi.service"}, conn)

	err := s.StopAll(context.Background())
	if err == nil {
		t.Fatal("StopAll() error = nil, want failure for the broken unit")
	}
	if !strings.Contains(err.Error(), "retroarch.service") {
		t.Errorf("error should name the failed unit, got: %v", err)
	}
	if len(conn.stopped) != 1 || conn.stopped[0] != "kodi.service" {
		t.Errorf("stopped = %v, want the healthy unit stopped anyway", conn.stopped)
	}
}

func TestSystemdUnits_EmptyListIsNoOp(t *testing.T) {
	s := NewSystemdUnits(nil, discardLogger())
	s.connect = func(context.Context) (unitConn, error) {
		t.Error("connect should not be called with no units")
		return nil, errors.New("unreachable")
	}

	if err := s.StopAll(context.Background()); err != nil {
		t.Errorf("StopAll() error = %v, want nil", err)
	}
}

type flakyStopper struct {
	err    error
	called int
}

func (f *flakyStopper) StopAll(context.Context) error {
	f.called++
	return f.err
}

func TestSequence_RunsEveryStopper(t *testing.T) {
	first := &flakyStopper{err: errors.New("first failed")}
	second := &flakyStopper{}

	err := Sequence{first, second}.StopAll(context.Background())
	if err == nil {
		t.Fatal("StopAll() error = nil, want first stopper's failure")
	}
	if first.called != 1 || second.called != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.called, second.called)
	}
}
