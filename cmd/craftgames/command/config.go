package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type Config struct {
	DataFolder     string        `json:"data_folder"`
	WorldContainer string        `json:"world_container"`
	Console        ConsoleConfig `json:"console"`
	Nats           NatsConfig    `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.DataFolder == "" {
		el.Add(fmt.Errorf("data_folder is required"))
	}
	if c.WorldContainer == "" {
		el.Add(fmt.Errorf("world_container is required"))
	}

	el.Add(c.Console.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}
