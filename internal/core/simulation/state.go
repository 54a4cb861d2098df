package simulation

// State is the simulation loop's current mode (§4.5)
type State int

const (
	// StatePaused processes nudges into node state but does not advance
	// physics and does not emit snapshots.
	StatePaused State = iota
	// StateRunning advances the kernel once per tick, applying pending
	// nudges first, then enqueues a snapshot.
	StateRunning
	// StateRandomizing re-seeds active node positions and briefly ignores
	// inbound nudges for the affected slots before returning to running.
	StateRandomizing
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateRunning:
		return "running"
	case StateRandomizing:
		return "randomizing"
	default:
		return "unknown"
	}
}
