package messaging

import (
	"fmt"

	"github.com/google/uuid"
)

// Bus is what the publisher needs from the server.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Subject is the channel carrying text for one actor.
func Subject(actor uuid.UUID) string {
	return fmt.Sprintf("actor-%s", actor)
}

// NatsPublisher delivers text to individual actor channels.
type NatsPublisher struct {
	bus Bus
}

func NewNatsPublisher(bus Bus) *NatsPublisher {
	return &NatsPublisher{bus: bus}
}

// Send publishes msg to actor.
func (p *NatsPublisher) Send(actor uuid.UUID, msg string) error {
	return p.bus.Publish(Subject(actor), []byte(msg))
}

// Listen calls handler with every message sent to actor until the returned
// function is called.
func (p *NatsPublisher) Listen(actor uuid.UUID, handler func(msg string)) (func(), error) {
	return p.bus.Subscribe(Subject(actor), func(data []byte) {
		handler(string(data))
	})
}
