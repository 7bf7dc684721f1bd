package player

import "errors"

// Session and queue operation errors
var (
	ErrOutOfRange          = errors.New("queue position out of range")
	ErrNothingPlaying      = errors.New("nothing is playing")
	ErrAlreadyPaused       = errors.New("playback is already paused")
	ErrNotPaused           = errors.New("playback is not paused")
	ErrSessionStopped      = errors.New("session is stopped")
	ErrNoTransport         = errors.New("session has no audio transport")
	ErrPlaybackUnavailable = errors.New("playback unavailable after repeated failures")
)
