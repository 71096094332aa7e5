package flight

import "rocket-logger/internal/ticks"

// Lamp returns the requested status-LED level for this iteration. Pure
// derivation from (state, time in state, blink phase); never touches flight
// state or the bus.
//
// Patterns: solid on for faults, fast toggle while armed, a short pulse
// train while logging, a slow heartbeat in standby, dark otherwise.
func (m *Machine) Lamp() bool {
	return lampFor(m.state, ticks.Diff(m.clock.Now(), m.enteredAt), m.blink)
}

func lampFor(s State, elapsedMs int32, blink bool) bool {
	switch s {
	case StateInitFail, StateFault:
		return true
	case StateArmed:
		return blink
	case StateLogging:
		return elapsedMs%500 < 100
	case StateStandby:
		return elapsedMs%2000 < 150
	}
	// Boot, PostFlight.
	return false
}
