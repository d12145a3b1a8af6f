// Package workloads stops the workloads managed on the box before a
// reboot, so containers get their stop signals instead of a hard cut.
package workloads

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultStopCommand stops all running Docker containers. A no-op when
// Docker is not installed or nothing is running.
const DefaultStopCommand = "docker ps -q | xargs -r docker stop"

// Docker stops managed containers through a shell command.
type Docker struct {
	command string
	logger  *slog.Logger
}

// NewDocker returns a stopper running the given shell command; empty means
// DefaultStopCommand.
func NewDocker(command string, logger *slog.Logger) *Docker {
	if strings.TrimSpace(command) == "" {
		command = DefaultStopCommand
	}
	return &Docker{command: command, logger: logger}
}

// StopAll runs the stop command. Best effort: the caller decides what a
// failure means, and for the shutdown sequence it means nothing.
func (d *Docker) StopAll(ctx context.Context) error {
	d.logger.Info("Stopping managed workloads", "command", d.command)

	cmd := exec.CommandContext(ctx, "sh", "-c", d.command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("stop command failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	d.logger.Info("Stop command finished", "output", strings.TrimSpace(string(out)))
	return nil
}
