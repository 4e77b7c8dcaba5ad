package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-craftgames/internal/commands"
	"github.com/pixil98/go-craftgames/internal/console"
	"github.com/pixil98/go-craftgames/internal/messaging"
	"github.com/pixil98/go-errors"
)

type ConsoleConfig struct {
	Disabled bool `json:"disabled"`
	Width    int  `json:"width"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width < 0 {
		el.Add(fmt.Errorf("width must not be negative"))
	}

	return el.Err()
}

func (c *ConsoleConfig) buildConsole(h *commands.Handler, bus *messaging.NatsServer) *console.Console {
	opts := []console.ConsoleOpt{console.WithReady(bus.Ready())}
	if c.Width > 0 {
		opts = append(opts, console.WithWidth(c.Width))
	}

	return console.NewConsole(os.Stdin, os.Stdout, h, messaging.NewNatsPublisher(bus), opts...)
}
