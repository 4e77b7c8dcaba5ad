// Package host describes what the game core needs from the server runtime it
// is embedded in: actors that can be messaged and moved, and a container of
// world directories.
package host

import (
	"fmt"

	"github.com/google/uuid"
)

// Location is a point in a world with facing.
type Location struct {
	World      string
	X, Y, Z    float64
	Yaw, Pitch float32
}

func (l Location) String() string {
	return fmt.Sprintf("%s(%.2f, %.2f, %.2f, yaw %.1f, pitch %.1f)", l.World, l.X, l.Y, l.Z, l.Yaw, l.Pitch)
}

// Actor is anyone able to issue commands: a player or the console.
type Actor interface {
	ID() uuid.UUID
	Name() string
	// IsPlayer is false for senders without a position in a world.
	IsPlayer() bool
	SendMessage(msg string) error
	Location() Location
	Teleport(Location) error
}

// WorldContainer holds the world directories of the running server.
type WorldContainer interface {
	// ListDirs returns the names of all world directories.
	ListDirs() ([]string, error)
	// Generate creates world dir from the map template at source.
	Generate(dir string, source string) error
	// Remove deletes world dir.
	Remove(dir string) error
}
