package events

// Event type constants for kelindar/event.
const (
	TypeButtonPressed uint32 = iota + 1
	TypeShutdownStarted
	TypeHealthTierChanged
	TypeConfigReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ButtonPressedEvent is published after a button press survives debouncing.
type ButtonPressedEvent struct {
	Button    string `json:"button" example:"power" doc:"Button name (power or reset)"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Press timestamp"`
}

// Type returns the event type identifier for ButtonPressedEvent.
func (e ButtonPressedEvent) Type() uint32 { return TypeButtonPressed }

// ShutdownStartedEvent is published when the shutdown sequence is triggered
// for the first time. Repeat triggers do not publish again.
type ShutdownStartedEvent struct {
	Source    string `json:"source" example:"power-button" doc:"What triggered the shutdown"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Trigger timestamp"`
}

// Type returns the event type identifier for ShutdownStartedEvent.
func (e ShutdownStartedEvent) Type() uint32 { return TypeShutdownStarted }

// HealthTierChangedEvent is published by the LED animator when the health
// tier (and so the blink pattern) changes.
type HealthTierChangedEvent struct {
	Tier         string  `json:"tier" example:"medium" doc:"New health tier"`
	Load1        float64 `json:"load1" example:"2.4" doc:"1-minute load average at the transition"`
	TemperatureC float64 `json:"temperature_c" example:"68.5" doc:"CPU temperature at the transition"`
	Timestamp    string  `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Transition timestamp"`
}

// Type returns the event type identifier for HealthTierChangedEvent.
func (e HealthTierChangedEvent) Type() uint32 { return TypeHealthTierChanged }

// ConfigReloadedEvent is published when the config watcher applies a new
// configuration file.
type ConfigReloadedEvent struct {
	Path      string `json:"path" example:"/etc/caseguard/config.toml" doc:"Config file path"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Reload timestamp"`
}

// Type returns the event type identifier for ConfigReloadedEvent.
func (e ConfigReloadedEvent) Type() uint32 { return TypeConfigReloaded }
