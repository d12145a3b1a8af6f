package led

import "testing"

func TestSelect_Tiers(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name  string
		load1 float64
		tempC float64
		want  Pattern
	}{
		{"cool and idle", 0.5, 50, Idle},
		{"load low tier", 1.5, 50, Low},
		{"temp high tier regardless of load", 0, 80, High},
		{"load high tier regardless of temp", 4.0, 40, High},
		{"medium by temp", 0.2, 70, Medium},
		{"medium by load", 2.5, 30, Medium},
		{"zeros", 0, 0, Idle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.Select(tt.load1, tt.tempC, false); got != tt.want {
				t.Errorf("Select(%v, %v) = %v, want %v", tt.load1, tt.tempC, got, tt.want)
			}
		})
	}
}

func TestSelect_InclusiveBoundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name  string
		load1 float64
		tempC float64
		want  Pattern
	}{
		{"temp exactly 60", 0, 60.0, Low},
		{"temp just below 60", 0, 59.0, Idle},
		{"temp exactly 67", 0, 67.0, Medium},
		{"temp just below 67", 0, 66.0, Low},
		{"temp exactly 75", 0, 75.0, High},
		{"temp just below 75", 0, 74.0, Medium},
		{"load exactly 1.1", 1.1, 0, Low},
		{"load just below 1.1", 1.0, 0, Idle},
		{"load exactly 2.2", 2.2, 0, Medium},
		{"load just below 2.2", 2.1, 0, Low},
		{"load exactly 3.3", 3.3, 0, High},
		{"load just below 3.3", 3.2, 0, Medium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.Select(tt.load1, tt.tempC, false); got != tt.want {
				t.Errorf("Select(%v, %v) = %v, want %v", tt.load1, tt.tempC, got, tt.want)
			}
		})
	}
}

func TestSelect_ShutdownOverridesEverything(t *testing.T) {
	th := DefaultThresholds()

	inputs := []struct{ load1, tempC float64 }{
		{0, 0},
		{0.5, 50},
		{5.0, 90},
		{1.1, 60},
	}

	for _, in := range inputs {
		if got := th.Select(in.load1, in.tempC, true); got != Shutdown {
			t.Errorf("Select(%v, %v, shuttingDown) = %v, want Shutdown", in.load1, in.tempC, got)
		}
	}
}

func TestSelect_MonotonicInSeverity(t *testing.T) {
	th := DefaultThresholds()

	// Increasing either input never decreases the returned severity.
	loads := []float64{0, 0.5, 1.0, 1.1, 2.0, 2.2, 3.0, 3.3, 5.0}
	temps := []float64{0, 40, 59, 60, 66, 67, 74, 75, 90}

	for _, tempC := range temps {
		prev := th.Select(loads[0], tempC, false)
		for _, load1 := range loads[1:] {
			cur := th.Select(load1, tempC, false)
			if cur < prev {
				t.Errorf("severity decreased: Select(%v, %v) = %v after %v", load1, tempC, cur, prev)
			}
			prev = cur
		}
	}

	for _, load1 := range loads {
		prev := th.Select(load1, temps[0], false)
		for _, tempC := range temps[1:] {
			cur := th.Select(load1, tempC, false)
			if cur < prev {
				t.Errorf("severity decreased: Select(%v, %v) = %v after %v", load1, tempC, cur, prev)
			}
			prev = cur
		}
	}
}

func TestPattern_Table(t *testing.T) {
	tests := []struct {
		pattern Pattern
		period  int
		onTicks int
	}{
		{Shutdown, 2, 1},
		{High, 4, 2},
		{Medium, 8, 4},
		{Low, 14, 7},
		{Idle, 1, 1},
	}

	for _, tt := range tests {
		if got := tt.pattern.Period(); got != tt.period {
			t.Errorf("%v.Period() = %d, want %d", tt.pattern, got, tt.period)
		}
		if got := tt.pattern.OnTicks(); got != tt.onTicks {
			t.Errorf("%v.OnTicks() = %d, want %d", tt.pattern, got, tt.onTicks)
		}
	}
}

func TestPattern_String(t *testing.T) {
	if Shutdown.String() != "shutdown" || Idle.String() != "idle" {
		t.Error("unexpected pattern names")
	}
	if Pattern(42).String() != "unknown" {
		t.Error("out-of-range pattern should stringify as unknown")
	}
}
