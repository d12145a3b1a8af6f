package workloads

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStopAll_Success(t *testing.T) {
	d := NewDocker("true", discardLogger())

	if err := d.StopAll(context.Background()); err != nil {
		t.Errorf("StopAll() error = %v, want nil", err)
	}
}

func TestStopAll_FailureReturnsError(t *testing.T) {
	d := NewDocker("echo boom >&2; exit 3", discardLogger())

	err := d.StopAll(context.Background())
	if err == nil {
		t.Fatal("StopAll() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry command output, got: %v", err)
	}
}

func TestStopAll_Timeout(t *testing.T) {
	d := NewDocker("sleep 5", discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := d.StopAll(ctx); err == nil {
		t.Error("StopAll() should fail when the context deadline passes")
	}
}

func TestNewDocker_DefaultCommand(t *testing.T) {
	d := NewDocker("  ", discardLogger())
	if d.command != DefaultStopCommand {
		t.Errorf("command = %q, want default", d.command)
	}
}
