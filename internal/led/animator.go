package led

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/caseguard/caseguard/internal/events"
	"github.com/caseguard/caseguard/internal/gpio"
	"github.com/caseguard/caseguard/internal/health"
)

// DefaultTick is the animation time quantum. The loop never sleeps longer
// than one tick, so a shutdown trigger is visible within one tick.
const DefaultTick = 200 * time.Millisecond

// ShutdownFlag reports whether the shutdown sequence has been triggered.
// Satisfied by *power.State; reads are synchronized by the implementation.
type ShutdownFlag interface {
	ShuttingDown() bool
}

// Animator owns the animation clock and is the only writer of the LED
// line. Every tick it re-checks the shutdown flag before any sensor I/O,
// then renders the selected pattern.
type Animator struct {
	out     gpio.Output
	sampler health.Sampler
	flag    ShutdownFlag
	bus     *events.Bus
	logger  *slog.Logger
	tick    time.Duration

	mu         sync.Mutex
	thresholds Thresholds

	// phase is a single counter shared across patterns, wrapped modulo
	// the active pattern's period. Only the tick loop touches it.
	phase   int
	current Pattern
}

// NewAnimator creates an animator rendering onto out at the default tick.
func NewAnimator(out gpio.Output, sampler health.Sampler, flag ShutdownFlag, thresholds Thresholds, bus *events.Bus, logger *slog.Logger) *Animator {
	return &Animator{
		out:        out,
		sampler:    sampler,
		flag:       flag,
		bus:        bus,
		logger:     logger,
		tick:       DefaultTick,
		thresholds: thresholds,
		current:    Idle,
	}
}

// SetTick overrides the tick duration. Call before Run.
func (a *Animator) SetTick(tick time.Duration) {
	if tick > 0 {
		a.tick = tick
	}
}

// SetThresholds swaps the health tier boundaries. Safe to call while the
// animator is running; the next tick uses the new values.
func (a *Animator) SetThresholds(t Thresholds) {
	a.mu.Lock()
	a.thresholds = t
	a.mu.Unlock()
	a.logger.Info("Health thresholds updated",
		"temp_low_c", t.LowTempC, "temp_medium_c", t.MediumTempC, "temp_high_c", t.HighTempC,
		"load_low", t.LowLoad1, "load_medium", t.MediumLoad1, "load_high", t.HighLoad1)
}

// Run drives the LED until ctx is canceled. Sensor read failures never
// stop the loop; the sampler substitutes zeros, which select Idle.
func (a *Animator) Run(ctx context.Context) {
	a.logger.Info("LED animator started", "tick", a.tick)

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("LED animator stopped")
			return
		case <-ticker.C:
			a.step()
		}
	}
}

// step advances the animation by exactly one tick.
func (a *Animator) step() {
	// Shutdown is checked before any sensor I/O so the strobe latency
	// does not depend on sensor read cost.
	if a.flag.ShuttingDown() {
		if a.current != Shutdown {
			a.logger.Info("Rendering shutdown pattern")
			a.current = Shutdown
		}
		a.write(a.phase%2 == 0)
		a.phase = (a.phase + 1) % Shutdown.Period()
		return
	}

	sample := a.sampler.Sample()
	pattern := a.snapshotThresholds().Select(sample.Load1, sample.TemperatureC, false)

	if pattern != a.current {
		a.logger.Debug("Health tier changed",
			"from", a.current.String(), "to", pattern.String(),
			"load1", sample.Load1, "temperature_c", sample.TemperatureC)
		if a.bus != nil {
			a.bus.Publish(events.HealthTierChangedEvent{
				Tier:         pattern.String(),
				Load1:        sample.Load1,
				TemperatureC: sample.TemperatureC,
				Timestamp:    time.Now().Format(time.RFC3339),
			})
		}
		a.current = pattern
	}

	if pattern == Idle {
		a.write(true)
		a.phase = 0
		return
	}

	a.write(a.phase < pattern.OnTicks())
	a.phase = (a.phase + 1) % pattern.Period()
}

func (a *Animator) snapshotThresholds() Thresholds {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.thresholds
}

func (a *Animator) write(on bool) {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := a.out.Set(level); err != nil {
		a.logger.Warn("Failed to write LED line", "error", err)
	}
}
