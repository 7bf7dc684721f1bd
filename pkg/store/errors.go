package store

import "errors"

// Store operation errors
var (
	ErrNotConnected     = errors.New("store not connected")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrPlaylistEmpty    = errors.New("playlist is empty")
	ErrDuplicateSong    = errors.New("song already in playlist")
)
