// Package power coordinates the shutdown sequence: the shared
// shutting-down flag, the debounced buttons that trigger it, and the
// reboot path.
package power

import "sync"

// State holds the single shutting-down flag shared between the shutdown
// coordinator (sole writer) and the LED animator (reader). All access goes
// through the mutex; a torn read could make the LED miss the shutdown
// strobe.
type State struct {
	mu           sync.Mutex
	shuttingDown bool
}

// NewState returns a State with the flag cleared.
func NewState() *State {
	return &State{}
}

// ShuttingDown reports whether the shutdown sequence has been triggered.
func (s *State) ShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

// beginShutdown flips the flag exactly once. Returns false if the
// transition already happened. The flag is never reset; the only
// transition is forward.
func (s *State) beginShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.shuttingDown = true
	return true
}
