package catalog

import "errors"

var (
	// ErrNotFound means the catalog answered and the song does not exist.
	// Not retried; reported to the caller as-is.
	ErrNotFound = errors.New("song not found in catalog")

	// ErrUnavailable is a transport-level catalog failure (network error,
	// 5xx, malformed body). Idempotent reads get one retry before this
	// surfaces.
	ErrUnavailable = errors.New("catalog unavailable")

	// ErrAudioUnavailable means the entry resolved but has nothing playable.
	ErrAudioUnavailable = errors.New("no playable audio for song")
)
