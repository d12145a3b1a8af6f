package power

import (
	"context"
	"log/slog"
	"time"

	"github.com/caseguard/caseguard/internal/events"
)

// DefaultGrace is how long the shutdown strobe is shown before any
// disruptive action, so the user gets visible feedback.
const DefaultGrace = 3 * time.Second

// DefaultStopTimeout bounds the managed-workload stop step.
const DefaultStopTimeout = 30 * time.Second

// Workloads stops managed workloads before reboot. Best effort: the
// coordinator only logs the outcome.
type Workloads interface {
	StopAll(ctx context.Context) error
}

// Rebooter issues the system reboot. Must tolerate being invoked more than
// once concurrently; the reset button path calls it without any guard.
type Rebooter interface {
	Reboot() error
}

// Coordinator runs the graceful shutdown sequence at most once per process
// lifetime, no matter how many times or how concurrently it is triggered.
type Coordinator struct {
	state       *State
	workloads   Workloads
	rebooter    Rebooter
	grace       time.Duration
	stopTimeout time.Duration
	bus         *events.Bus
	logger      *slog.Logger
}

// NewCoordinator wires the shutdown sequence around the shared state.
func NewCoordinator(state *State, workloads Workloads, rebooter Rebooter, bus *events.Bus, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		state:       state,
		workloads:   workloads,
		rebooter:    rebooter,
		grace:       DefaultGrace,
		stopTimeout: DefaultStopTimeout,
		bus:         bus,
		logger:      logger,
	}
}

// SetGrace overrides the grace period. Call before any trigger.
func (c *Coordinator) SetGrace(d time.Duration) {
	if d >= 0 {
		c.grace = d
	}
}

// SetStopTimeout overrides the workload stop timeout. Call before any trigger.
func (c *Coordinator) SetStopTimeout(d time.Duration) {
	if d > 0 {
		c.stopTimeout = d
	}
}

// TriggerPowerShutdown runs the shutdown sequence: flip the shared flag,
// wait the grace period, stop managed workloads, reboot. Safe to call
// concurrently; every call after the first is a logged no-op. Once the
// flag is set the sequence is unstoppable: workload-stop failures are
// logged and the reboot still happens.
func (c *Coordinator) TriggerPowerShutdown() {
	if !c.state.beginShutdown() {
		c.logger.Info("Power button pressed again, shutdown already in progress - ignoring")
		return
	}

	c.logger.Info("Power button pressed - starting shutdown sequence", "grace", c.grace)
	if c.bus != nil {
		c.bus.Publish(events.ShutdownStartedEvent{
			Source:    "power-button",
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	// Grace wait happens outside the state lock so the animator can keep
	// reading the flag and strobing the LED.
	time.Sleep(c.grace)

	ctx, cancel := context.WithTimeout(context.Background(), c.stopTimeout)
	defer cancel()
	if err := c.workloads.StopAll(ctx); err != nil {
		c.logger.Warn("Failed to stop managed workloads, rebooting anyway", "error", err)
	} else {
		c.logger.Info("Managed workloads stopped")
	}

	c.logger.Info("Triggering reboot")
	if err := c.rebooter.Reboot(); err != nil {
		c.logger.Error("Reboot command failed", "error", err)
	}
}
