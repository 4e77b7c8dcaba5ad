package player

import (
	"fmt"
	"strings"
)

// State is the mode a player is currently in with respect to games.
type State int

const (
	StateNone State = iota
	StatePlaying
	StateWatching
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StatePlaying:
		return "playing"
	case StateWatching:
		return "watching"
	case StateEditing:
		return "editing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState converts a state label back into a State.
func ParseState(s string) (State, error) {
	switch strings.ToLower(s) {
	case "none":
		return StateNone, nil
	case "playing":
		return StatePlaying, nil
	case "watching":
		return StateWatching, nil
	case "editing":
		return StateEditing, nil
	default:
		return StateNone, fmt.Errorf("unknown player state %q", s)
	}
}
