package plugin

// State represents the lifecycle state of a plugin instance.
type State int

// Plugin states.
const (
	// StateConstructed - Instance exists but Init has not succeeded.
	StateConstructed State = iota

	// StateInitialized - Init succeeded; the instance is live.
	StateInitialized

	// StateDestroyed - Destroy ran. Terminal.
	StateDestroyed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateInitialized:
		return "initialized"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// IsLive returns true if the instance has been initialised and not destroyed.
func (s State) IsLive() bool {
	return s == StateInitialized
}
