// Package led selects and renders the status LED blink patterns that
// reflect system health and the shutdown state.
package led

// Pattern is a named blink behavior for the status LED.
type Pattern int

const (
	// Idle is steady ON: the system is healthy and lightly loaded.
	Idle Pattern = iota
	// Low blinks slowly: 7 ticks ON, 7 ticks OFF.
	Low
	// Medium blinks at a middle rate: 4 ticks ON, 4 ticks OFF.
	Medium
	// High blinks quickly: 2 ticks ON, 2 ticks OFF.
	High
	// Shutdown strobes every tick while the shutdown sequence runs.
	Shutdown
)

// String returns the pattern name.
func (p Pattern) String() string {
	switch p {
	case Idle:
		return "idle"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Period returns the pattern's cycle length in ticks.
func (p Pattern) Period() int {
	switch p {
	case Shutdown:
		return 2
	case High:
		return 4
	case Medium:
		return 8
	case Low:
		return 14
	default: // Idle is steady
		return 1
	}
}

// OnTicks returns how many ticks at the start of the period the LED is ON.
func (p Pattern) OnTicks() int {
	switch p {
	case Shutdown:
		return 1
	case High:
		return 2
	case Medium:
		return 4
	case Low:
		return 7
	default: // Idle is always ON
		return 1
	}
}

// Thresholds holds the health tier boundaries. A tier is entered when
// either the temperature or the load reaches its boundary (inclusive).
type Thresholds struct {
	LowTempC    float64
	MediumTempC float64
	HighTempC   float64

	LowLoad1    float64
	MediumLoad1 float64
	HighLoad1   float64
}

// DefaultThresholds returns the stock NESPi tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowTempC:    60.0,
		MediumTempC: 67.0,
		HighTempC:   75.0,
		LowLoad1:    1.1,
		MediumLoad1: 2.2,
		HighLoad1:   3.3,
	}
}

// Select maps a health reading to a Pattern. Shutdown overrides all health
// inputs. Otherwise tiers are checked from most to least severe, first
// match wins. Callers clamp NaN and negative inputs to 0 beforehand.
func (t Thresholds) Select(load1, temperatureC float64, shuttingDown bool) Pattern {
	if shuttingDown {
		return Shutdown
	}

	switch {
	case temperatureC >= t.HighTempC || load1 >= t.HighLoad1:
		return High
	case temperatureC >= t.MediumTempC || load1 >= t.MediumLoad1:
		return Medium
	case temperatureC >= t.LowTempC || load1 >= t.LowLoad1:
		return Low
	default:
		return Idle
	}
}
