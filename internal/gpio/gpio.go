package gpio

import (
	"log/slog"
	"time"
)

// Level is a digital line level.
type Level int

const (
	Low Level = iota
	High
)

// String returns the level name.
func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Output is a single output line.
type Output interface {
	// Set drives the line to the given level.
	Set(level Level) error
	// Close releases the line.
	Close() error
}

// Input is a single input line.
type Input interface {
	// Value reads the current line level.
	Value() (Level, error)
	// Close releases the line.
	Close() error
}

// Chip abstracts a GPIO character device.
// Implementations handle line requests and edge event dispatch.
type Chip interface {
	// RequestOutput claims a pin as an output driven to the initial level.
	RequestOutput(pin int, initial Level) (Output, error)

	// RequestButton claims a pin as a pulled-up input and invokes handler
	// on each falling edge. The kernel filters edges faster than debounce.
	// Handlers run on the event goroutine owned by the chip.
	RequestButton(pin int, debounce time.Duration, handler func()) (Input, error)

	// Close releases the chip and all lines requested through it.
	Close() error
}

// Open returns a Chip backed by the named GPIO character device.
// Falls back to a no-op chip when the device is not available, so the
// daemon can run on machines without GPIO hardware.
func Open(name string, logger *slog.Logger) Chip {
	chip, err := openCdev(name)
	if err != nil {
		logger.Warn("GPIO chip not available, using no-op chip", "chip", name, "error", err)
		return newNoop(logger)
	}
	logger.Info("GPIO chip opened", "chip", name)
	return chip
}
