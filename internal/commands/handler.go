package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-craftgames/internal/game"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/script"
	"github.com/pixil98/go-craftgames/internal/session"
)

// GameLister lists the configured game types.
type GameLister interface {
	GameNames() []string
}

// Reply is the data every message template sees.
type Reply struct {
	Command string
	Usage   string
	Error   string
	Name    string
	ID      int
	Map     string
	CanJoin bool
	Script  string
	Tag     string
	Mode    string
	Count   int
	Index   int
	Capture string
}

// subcommand is one verb below a root command such as "game start". run and
// complete receive the arguments following the verb.
type subcommand struct {
	name     string
	usage    string
	minArgs  int
	maxArgs  int
	run      func(ctx context.Context, actor host.Actor, args []string) error
	complete func(actor host.Actor, prev []string) []string
}

type rootCommand struct {
	name string
	subs []*subcommand
}

func (r *rootCommand) find(name string) *subcommand {
	for _, s := range r.subs {
		if strings.EqualFold(s.name, name) {
			return s
		}
	}
	return nil
}

func (r *rootCommand) usage() string {
	lines := make([]string, len(r.subs))
	for i, s := range r.subs {
		lines[i] = "/" + r.name + " " + s.usage
	}
	return strings.Join(lines, "\n")
}

// Handler runs the game and coord commands on behalf of actors.
type Handler struct {
	games    *game.Registry
	sessions *session.Manager
	catalog  GameLister
	messages *Messages
	roots    []*rootCommand
}

func NewHandler(games *game.Registry, sessions *session.Manager, catalog GameLister, messages *Messages) *Handler {
	h := &Handler{
		games:    games,
		sessions: sessions,
		catalog:  catalog,
		messages: messages,
	}
	h.roots = []*rootCommand{
		h.gameCommand(),
		h.coordCommand(),
	}
	return h
}

func (h *Handler) root(name string) *rootCommand {
	for _, r := range h.roots {
		if strings.EqualFold(r.name, name) {
			return r
		}
	}
	return nil
}

// Run executes line for actor and reports any failure back to the actor.
func (h *Handler) Run(ctx context.Context, actor host.Actor, line string) {
	err := h.Exec(ctx, actor, line)
	if err == nil {
		return
	}

	var ue *UserError
	if errors.As(err, &ue) {
		h.send(actor, ue.Message)
		return
	}

	slog.ErrorContext(ctx, "command failed", "actor", actor.Name(), "command", line, "error", err)
	h.send(actor, h.render("unexpected-error", Reply{}))
}

// Exec executes line for actor. Invalid input is returned as *UserError.
func (h *Handler) Exec(ctx context.Context, actor host.Actor, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	root := h.root(strings.TrimPrefix(fields[0], "/"))
	if root == nil {
		return h.userError("unknown-command", Reply{Command: fields[0]}, nil)
	}

	if len(fields) == 1 {
		h.send(actor, root.usage())
		return nil
	}

	sub := root.find(fields[1])
	if sub == nil {
		return h.userError("usage", Reply{Usage: root.usage()}, nil)
	}

	args := fields[2:]
	if len(args) < sub.minArgs || (sub.maxArgs >= 0 && len(args) > sub.maxArgs) {
		return h.usageError(root, sub)
	}

	return sub.run(ctx, actor, args)
}

func (h *Handler) usageError(root *rootCommand, sub *subcommand) *UserError {
	return h.userError("usage", Reply{Usage: "/" + root.name + " " + sub.usage}, nil)
}

// userError renders message key as a user-facing error wrapping cause.
func (h *Handler) userError(key string, data Reply, cause error) *UserError {
	return wrapUserError(h.render(key, data), cause)
}

func (h *Handler) reply(actor host.Actor, key string, data Reply) error {
	h.send(actor, h.render(key, data))
	return nil
}

func (h *Handler) render(key string, data Reply) string {
	msg, err := h.messages.Render(key, data)
	if err != nil {
		slog.Error("rendering message", "message", key, "error", err)
		return key
	}
	return msg
}

func (h *Handler) send(actor host.Actor, msg string) {
	if err := actor.SendMessage(msg); err != nil {
		slog.Warn("sending message", "actor", actor.Name(), "error", err)
	}
}

// gameError maps failures of building a game to replies.
func (h *Handler) gameError(name string, err error) error {
	var cerr *game.ConfigError
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return h.userError("game-not-found", Reply{Name: name, Error: err.Error()}, err)
	case errors.As(err, &cerr), errors.Is(err, script.ErrScriptEngineNotFound):
		slog.Warn("faulty game configuration", "game", name, "error", err)
		return h.userError("game-faulty", Reply{Name: name, Error: err.Error()}, err)
	default:
		return fmt.Errorf("building game %s: %w", name, err)
	}
}
