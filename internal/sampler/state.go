// internal/sampler/state.go
package sampler

// State is the sampler's lifecycle position.
type State int

const (
	// Idle: constructed, Run not yet called.
	Idle State = iota
	// Sampling: inside the tick loop.
	Sampling
	// Draining: loop exited, final write already committed, shutting down.
	Draining
	// Stopped: Run returned.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
