package gpio

import (
	"log/slog"
	"time"
)

// noopChip implements Chip as a no-op for systems without GPIO hardware.
// Outputs log at debug level; button inputs never fire and read inactive.
type noopChip struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noopChip {
	return &noopChip{logger: logger}
}

func (n *noopChip) RequestOutput(pin int, initial Level) (Output, error) {
	n.logger.Debug("GPIO output not available (no-op)", "pin", pin, "initial", initial.String())
	return &noopOutput{logger: n.logger, pin: pin}, nil
}

func (n *noopChip) RequestButton(pin int, _ time.Duration, _ func()) (Input, error) {
	n.logger.Debug("GPIO button not available (no-op)", "pin", pin)
	return &noopInput{}, nil
}

func (n *noopChip) Close() error { return nil }

type noopOutput struct {
	logger *slog.Logger
	pin    int
}

func (o *noopOutput) Set(level Level) error {
	o.logger.Debug("GPIO write (no-op)", "pin", o.pin, "level", level.String())
	return nil
}

func (o *noopOutput) Close() error { return nil }

type noopInput struct{}

// Value reads the pull-up idle level, so debounce re-checks treat any
// stray invocation as noise.
func (i *noopInput) Value() (Level, error) { return High, nil }

func (i *noopInput) Close() error { return nil }
