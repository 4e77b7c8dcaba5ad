package player

import "errors"

var (
	// ErrConcurrentPlayerState is returned when a player is claimed for a
	// session while already holding another one.
	ErrConcurrentPlayerState = errors.New("player is already in another game session")
)
