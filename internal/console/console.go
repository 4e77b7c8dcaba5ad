// Package console lets the server operator run game commands from standard
// input. Replies travel over the message bus like any other actor's.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/pixil98/go-craftgames/internal/display"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/messaging"
)

// Commands runs and completes command lines.
type Commands interface {
	Run(ctx context.Context, actor host.Actor, line string)
	Complete(actor host.Actor, line string) []string
}

type Console struct {
	in       io.Reader
	out      io.Writer
	commands Commands
	pub      *messaging.NatsPublisher
	actor    *Actor
	ready    <-chan struct{}
	width    int

	mu sync.Mutex
}

func NewConsole(in io.Reader, out io.Writer, commands Commands, pub *messaging.NatsPublisher, opts ...ConsoleOpt) *Console {
	c := &Console{
		in:       in,
		out:      out,
		commands: commands,
		pub:      pub,
		actor:    NewActor("CONSOLE", pub),
		width:    display.DefaultWidth,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Actor returns the actor commands from this console run as.
func (c *Console) Actor() *Actor {
	return c.actor
}

// Start reads command lines until ctx is done. A line ending in '?' lists
// completions instead of running. "pos x y z [yaw pitch]" moves the console
// actor.
func (c *Console) Start(ctx context.Context) error {
	if c.ready != nil {
		select {
		case <-c.ready:
		case <-ctx.Done():
			return nil
		}
	}

	msgs := make(chan string, 64)
	stop, err := c.pub.Listen(c.actor.ID(), func(msg string) {
		select {
		case msgs <- msg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("listening for console messages: %w", err)
	}
	defer stop()

	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case inputChan <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-msgs:
			c.writeLine(display.Wrap(msg, c.width))

		case line, ok := <-inputChan:
			if !ok {
				if err := <-inputErrChan; err != nil {
					slog.WarnContext(ctx, "reading console input", "error", err)
				}
				slog.InfoContext(ctx, "console input closed")
				inputChan = nil
				continue
			}

			c.handle(ctx, strings.TrimSpace(line))
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) {
	switch {
	case line == "":
		return

	case strings.HasSuffix(line, "?"):
		candidates := c.commands.Complete(c.actor, strings.TrimSuffix(line, "?"))
		if len(candidates) == 0 {
			c.writeLine("No completions.")
			return
		}
		c.writeLine(display.Columns(candidates, c.width))

	case strings.HasPrefix(line, "pos ") || line == "pos":
		loc, err := parsePosition(strings.Fields(line)[1:])
		if err != nil {
			c.writeLine(err.Error())
			return
		}
		loc.World = c.actor.Location().World
		c.actor.MoveTo(loc)
		c.writeLine("Console position: " + loc.String())

	default:
		c.commands.Run(ctx, c.actor, line)
	}
}

func parsePosition(args []string) (host.Location, error) {
	if len(args) != 3 && len(args) != 5 {
		return host.Location{}, errors.New("usage: pos <x> <y> <z> [yaw pitch]")
	}

	var vals [5]float64
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return host.Location{}, fmt.Errorf("invalid number %q", arg)
		}
		vals[i] = v
	}

	return host.Location{
		X:     vals[0],
		Y:     vals[1],
		Z:     vals[2],
		Yaw:   float32(vals[3]),
		Pitch: float32(vals[4]),
	}, nil
}

func (c *Console) writeLine(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := io.WriteString(c.out, msg+"\n")
	if err != nil {
		slog.Warn("writing to console", "error", err)
	}
}
