package console

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/messaging"
)

// Actor is the operator at the server console. It acts as a player standing
// at a movable location, so editing commands work from the console too.
type Actor struct {
	id   uuid.UUID
	name string
	pub  *messaging.NatsPublisher

	mu  sync.Mutex
	loc host.Location
}

func NewActor(name string, pub *messaging.NatsPublisher) *Actor {
	return &Actor{
		id:   uuid.New(),
		name: name,
		pub:  pub,
	}
}

func (a *Actor) ID() uuid.UUID {
	return a.id
}

func (a *Actor) Name() string {
	return a.name
}

func (a *Actor) IsPlayer() bool {
	return true
}

// SendMessage publishes msg on the actor's channel.
func (a *Actor) SendMessage(msg string) error {
	return a.pub.Send(a.id, msg)
}

func (a *Actor) Location() host.Location {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.loc
}

// MoveTo sets the actor's location without announcing it.
func (a *Actor) MoveTo(loc host.Location) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.loc = loc
}

func (a *Actor) Teleport(loc host.Location) error {
	a.MoveTo(loc)
	slog.Debug("console teleported", "location", loc.String())
	return nil
}
