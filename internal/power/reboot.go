package power

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/coreos/go-systemd/v22/login1"
)

// SystemRebooter reboots the machine through logind when D-Bus is
// reachable and falls back to the shutdown command otherwise. Reboot may
// be called more than once; the second request is harmless against a
// system that is already going down.
type SystemRebooter struct {
	conn   *login1.Conn
	logger *slog.Logger
}

// NewSystemRebooter connects to logind if possible.
func NewSystemRebooter(logger *slog.Logger) *SystemRebooter {
	conn, err := login1.New()
	if err != nil {
		logger.Debug("logind not reachable, will reboot via shutdown command", "error", err)
		conn = nil
	}
	return &SystemRebooter{conn: conn, logger: logger}
}

// Reboot requests an immediate reboot.
func (r *SystemRebooter) Reboot() error {
	if r.conn != nil {
		r.logger.Info("Requesting reboot via logind")
		err := r.conn.RebootWithContext(context.Background(), false)
		if err == nil {
			return nil
		}
		r.logger.Warn("logind reboot failed, falling back to shutdown command", "error", err)
	}

	r.logger.Info("Requesting reboot via shutdown command")
	if out, err := exec.Command("shutdown", "-r", "now").CombinedOutput(); err != nil {
		return fmt.Errorf("shutdown -r now: %w (output: %s)", err, out)
	}
	return nil
}
