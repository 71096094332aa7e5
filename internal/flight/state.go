package flight

// State is the flight computer's lifecycle phase. Transitions only move
// forward, except that Armed and Logging can drop into Fault. InitFail,
// PostFlight and Fault hold until power cycle.
type State int

const (
	StateBoot State = iota
	StateInitFail
	StateStandby
	StateArmed
	StateLogging
	StatePostFlight
	StateFault
)

func (s State) String() string {
	switch s {
	case StateBoot:
		return "BOOT"
	case StateInitFail:
		return "INIT_FAIL"
	case StateStandby:
		return "STANDBY"
	case StateArmed:
		return "ARMED"
	case StateLogging:
		return "LOGGING"
	case StatePostFlight:
		return "POST_FLIGHT"
	case StateFault:
		return "FAULT"
	}
	return "UNKNOWN"
}

// Terminal reports whether the machine takes no further action in s.
func (s State) Terminal() bool {
	switch s {
	case StateInitFail, StatePostFlight, StateFault:
		return true
	}
	return false
}
