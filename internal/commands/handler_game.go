package commands

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/go-craftgames/internal/coordtag"
	"github.com/pixil98/go-craftgames/internal/game"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/player"
	"github.com/pixil98/go-craftgames/internal/script"
)

// SpawnTag is the tag players are moved to when they enter a game.
const SpawnTag = "spawn"

func (h *Handler) gameCommand() *rootCommand {
	return &rootCommand{
		name: "game",
		subs: []*subcommand{
			{name: "start", usage: "start <name> <mapID>", minArgs: 2, maxArgs: 2, run: h.gameStart, complete: h.completeGameMap},
			{name: "stop", usage: "stop <id>", minArgs: 1, maxArgs: 1, run: h.gameStop, complete: h.completeLiveID},
			{name: "list", usage: "list", minArgs: 0, maxArgs: 0, run: h.gameList},
			{name: "script", usage: "script <name> <scriptID> execute", minArgs: 3, maxArgs: 3, run: h.gameScript, complete: h.completeScript},
			{name: "edit", usage: "edit <name> <mapID>", minArgs: 2, maxArgs: 2, run: h.gameEdit, complete: h.completeGameMap},
			{name: "join", usage: "join <id>", minArgs: 1, maxArgs: 1, run: h.gameJoin, complete: h.completeLiveID},
			{name: "watch", usage: "watch <id>", minArgs: 1, maxArgs: 1, run: h.gameWatch, complete: h.completeLiveID},
			{name: "leave", usage: "leave", minArgs: 0, maxArgs: 0, run: h.gameLeave},
		},
	}
}

func (h *Handler) gameStart(ctx context.Context, actor host.Actor, args []string) error {
	name, mapID := args[0], args[1]

	g, m, err := h.launch(ctx, name, mapID)
	if err != nil {
		return err
	}

	h.teleportToSpawn(ctx, actor, g, m.ID)
	return h.reply(actor, "game-started", Reply{Name: name, ID: g.ID(), Map: m.ID})
}

// launch starts game type name on mapID. A game whose map cannot be
// generated is stopped again.
func (h *Handler) launch(ctx context.Context, name string, mapID string) (*game.Game, game.MapDescriptor, error) {
	g, err := h.games.Start(name)
	if err != nil {
		return nil, game.MapDescriptor{}, h.gameError(name, err)
	}

	m, err := g.GenerateMap(mapID)
	if err != nil {
		h.abandon(ctx, g)
		if errors.Is(err, game.ErrMapNotFound) {
			return nil, game.MapDescriptor{}, h.userError("map-not-found", Reply{Name: name, Map: mapID}, err)
		}
		slog.ErrorContext(ctx, "generating map", "game", name, "map", mapID, "error", err)
		return nil, game.MapDescriptor{}, h.userError("map-failed", Reply{Name: name, Map: mapID}, err)
	}

	return g, m, nil
}

func (h *Handler) abandon(ctx context.Context, g *game.Game) {
	if err := h.games.Stop(g.ID()); err != nil {
		slog.WarnContext(ctx, "stopping abandoned game", "game", g.Name(), "id", g.ID(), "error", err)
	}
}

func (h *Handler) teleportToSpawn(ctx context.Context, actor host.Actor, g *game.Game, mapID string) {
	if !actor.IsPlayer() {
		return
	}

	mode, ok := g.Tags().ResolveMode(SpawnTag)
	if !ok {
		return
	}
	cs, err := g.Tags().Captures(coordtag.Query{Mode: mode, Tag: SpawnTag, MapID: mapID})
	if err != nil || len(cs) == 0 {
		return
	}

	loc := cs[0].Location()
	loc.World = g.WorldName()
	if err := actor.Teleport(loc); err != nil {
		slog.WarnContext(ctx, "teleporting to spawn", "actor", actor.Name(), "error", err)
	}
}

func (h *Handler) gameStop(ctx context.Context, actor host.Actor, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return h.usageError(h.root("game"), h.root("game").find("stop"))
	}

	err = h.games.Stop(id)
	if errors.Is(err, game.ErrGameNotFound) {
		return h.userError("game-not-running", Reply{ID: id}, err)
	}
	if err != nil {
		// The game is gone from the registry, only its world lingers
		slog.WarnContext(ctx, "stopping game", "id", id, "error", err)
	}

	return h.reply(actor, "game-stopped", Reply{ID: id})
}

func (h *Handler) gameList(_ context.Context, actor host.Actor, _ []string) error {
	live := h.games.Find(game.Filter{})
	if len(live) == 0 {
		return h.reply(actor, "game-list-empty", Reply{})
	}

	lines := make([]string, 0, len(live))
	for _, g := range live {
		data := Reply{ID: g.ID(), Name: g.Name(), CanJoin: g.CanJoin()}
		if m, ok := g.CurrentMap(); ok {
			data.Map = m.ID
		}
		lines = append(lines, h.render("game-list-entry", data))
	}

	h.send(actor, strings.Join(lines, "\n"))
	return nil
}

func (h *Handler) gameScript(ctx context.Context, actor host.Actor, args []string) error {
	name, scriptID, action := args[0], args[1], args[2]
	if action != "execute" {
		return h.usageError(h.root("game"), h.root("game").find("script"))
	}

	g, err := h.games.BuildDummy(name)
	if err != nil {
		return h.gameError(name, err)
	}

	s, ok := g.Script(scriptID)
	if !ok {
		return h.userError("script-not-found", Reply{Name: name, Script: scriptID}, nil)
	}

	s.SetPrinter(func(line string) { h.send(actor, line) })
	err = s.Parse()
	if err == nil {
		err = s.Execute(ctx)
	}

	var rerr *script.RuntimeError
	if errors.As(err, &rerr) {
		slog.WarnContext(ctx, "script failed", "game", name, "script", scriptID, "error", err)
		return h.userError("script-failed", Reply{Name: name, Script: scriptID, Error: rerr.Err.Error()}, err)
	}
	if err != nil {
		return err
	}

	return h.reply(actor, "script-executed", Reply{Name: name, Script: scriptID})
}

func (h *Handler) gameEdit(ctx context.Context, actor host.Actor, args []string) error {
	name, mapID := args[0], args[1]

	if _, ok := h.sessions.Session(actor.ID()); ok {
		return h.userError("busy", Reply{Name: name}, player.ErrConcurrentPlayerState)
	}

	g, m, err := h.launch(ctx, name, mapID)
	if err != nil {
		return err
	}

	_, err = h.sessions.Editor(actor.ID(), g)
	if err != nil {
		h.abandon(ctx, g)
		if errors.Is(err, player.ErrConcurrentPlayerState) {
			return h.userError("busy", Reply{Name: name}, err)
		}
		return err
	}

	h.teleportToSpawn(ctx, actor, g, m.ID)
	return h.reply(actor, "edit-started", Reply{Name: name, ID: g.ID(), Map: m.ID})
}

func (h *Handler) gameJoin(ctx context.Context, actor host.Actor, args []string) error {
	return h.enter(ctx, actor, args[0], "join")
}

func (h *Handler) gameWatch(ctx context.Context, actor host.Actor, args []string) error {
	return h.enter(ctx, actor, args[0], "watch")
}

// enter puts the actor into live game arg as a player or, for "watch", a
// spectator. Only joinable games take players.
func (h *Handler) enter(ctx context.Context, actor host.Actor, arg string, verb string) error {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return h.usageError(h.root("game"), h.root("game").find(verb))
	}

	g, ok := h.games.FindByID(id)
	if !ok {
		return h.userError("game-not-running", Reply{ID: id}, game.ErrGameNotFound)
	}

	data := Reply{Name: g.Name(), ID: id}
	if verb == "join" && !g.CanJoin() {
		return h.userError("game-not-joinable", data, nil)
	}

	join, key := h.sessions.Player, "joined"
	if verb == "watch" {
		join, key = h.sessions.Spectator, "watching"
	}
	_, err = join(actor.ID(), g)
	if errors.Is(err, player.ErrConcurrentPlayerState) {
		return h.userError("busy", data, err)
	}
	if err != nil {
		return err
	}

	if m, ok := g.CurrentMap(); ok {
		h.teleportToSpawn(ctx, actor, g, m.ID)
	}
	return h.reply(actor, key, data)
}

// gameLeave ends the actor's session. An edit instance stops once its last
// editor leaves.
func (h *Handler) gameLeave(ctx context.Context, actor host.Actor, _ []string) error {
	s, ok := h.sessions.Leave(actor.ID())
	if !ok {
		return h.userError("not-in-game", Reply{}, nil)
	}

	data := Reply{ID: s.GameID(), Name: "the game"}
	g, err := s.Game()
	if err == nil {
		data.Name = g.Name()
		if s.State() == player.StateEditing && len(h.sessions.Sessions(g.ID())) == 0 {
			h.abandon(ctx, g)
		}
	}

	return h.reply(actor, "left", data)
}
