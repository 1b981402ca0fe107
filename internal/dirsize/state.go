package dirsize

import "fmt"

// State is a step of a size calculation.
type State int

// Calculation states. A run moves Idle → Filtering → Accumulating →
// CapBreached or Completed → Reported. Both CapBreached and Completed are
// successful outcomes.
const (
	Idle State = iota
	Filtering
	Accumulating
	CapBreached
	Completed
	Reported
)

var stateNames = [...]string{"idle", "filtering", "accumulating", "cap_breached", "completed", "reported"}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
