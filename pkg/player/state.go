package player

// State is the playback lifecycle of one guild session.
type State int

const (
	// StateIdle: connected, nothing queued, nothing playing.
	StateIdle State = iota
	// StateLoading: a queue entry was picked and its resolution is in flight.
	StateLoading
	// StatePlaying: audio is streaming.
	StatePlaying
	// StatePaused: stream exists but is suspended.
	StatePaused
	// StateRadioIdle: radio mode with an empty queue, auto-selection in flight.
	StateRadioIdle
	// StateStopped: terminal. A stopped session is never reused.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateRadioIdle:
		return "radio-idle"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
