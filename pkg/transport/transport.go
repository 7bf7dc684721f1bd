// Package transport streams resolved audio into a voice channel. The player
// never touches voice or ffmpeg directly; it drives this interface and
// receives lifecycle events back through a sink.
package transport

import "context"

// Handle identifies one live stream. Handles are never reused within a
// transport, so a late event from a superseded stream can be told apart from
// the current one.
type Handle uint64

// EventType tags a stream lifecycle event.
type EventType int

const (
	// EventFinished: the stream ran to its natural end.
	EventFinished EventType = iota
	// EventErrored: the stream died after exhausting internal restarts.
	EventErrored
)

// Event is delivered to the sink when a stream ends. Streams cancelled via
// Stop emit nothing; the caller asked for that outcome.
type Event struct {
	Type   EventType
	Handle Handle
	Err    error
}

// Sink receives stream events. It is called from transport goroutines and
// must not block.
type Sink func(Event)

// Transport plays one stream at a time into a voice channel.
type Transport interface {
	// BeginStream starts streaming the source URL and returns a handle for
	// it. Any previously running stream is torn down first without emitting
	// an event.
	BeginStream(ctx context.Context, sourceURL string) (Handle, error)

	// Stop tears down the stream if the handle is current. No event is
	// emitted. Stopping a stale handle is a no-op.
	Stop(handle Handle)

	// SetPaused suspends or resumes the stream if the handle is current.
	SetPaused(handle Handle, paused bool)

	// Close stops any stream and disconnects from the voice channel.
	Close()
}
