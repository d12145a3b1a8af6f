package power

import (
	"log/slog"
	"time"

	"github.com/caseguard/caseguard/internal/events"
	"github.com/caseguard/caseguard/internal/gpio"
)

// DefaultSettle is how long a press must be sustained after the edge
// before it counts as a press rather than contact bounce.
const DefaultSettle = 200 * time.Millisecond

// Button wraps one edge-interrupt source. After a falling edge it waits
// the settle interval, re-reads the line, and only dispatches the action
// if the line is still active (low, buttons are pulled up).
type Button struct {
	name   string
	line   gpio.Input
	settle time.Duration
	action func()
	bus    *events.Bus
	logger *slog.Logger
}

// NewButton creates a debouncer dispatching to action on confirmed presses.
// Bind the input line with BindLine before edges can be confirmed.
func NewButton(name string, settle time.Duration, action func(), bus *events.Bus, logger *slog.Logger) *Button {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Button{
		name:   name,
		settle: settle,
		action: action,
		bus:    bus,
		logger: logger,
	}
}

// BindLine attaches the input line used for the post-settle re-read.
// Call once during wiring, before edge events are delivered.
func (b *Button) BindLine(line gpio.Input) {
	b.line = line
}

// HandleEdge is invoked on each falling edge, asynchronously from the
// event goroutine. Overlapping invocations are tolerated: the power path
// is idempotent in the coordinator and the reset path relies on the
// rebooter tolerating repeat calls.
func (b *Button) HandleEdge() {
	if b.line == nil {
		return
	}

	time.Sleep(b.settle)

	level, err := b.line.Value()
	if err != nil {
		b.logger.Warn("Could not re-read button line", "button", b.name, "error", err)
		return
	}
	if level == gpio.High {
		// Released again within the settle window: contact bounce.
		b.logger.Debug("Ignoring button bounce", "button", b.name)
		return
	}

	b.logger.Info("Button press confirmed", "button", b.name)
	if b.bus != nil {
		b.bus.Publish(events.ButtonPressedEvent{
			Button:    b.name,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	b.action()
}
