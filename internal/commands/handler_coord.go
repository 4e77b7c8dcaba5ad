package commands

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-craftgames/internal/coordtag"
	"github.com/pixil98/go-craftgames/internal/game"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/player"
)

func (h *Handler) coordCommand() *rootCommand {
	return &rootCommand{
		name: "coord",
		subs: []*subcommand{
			{name: "list", usage: "list [block|entity]", minArgs: 0, maxArgs: 1, run: h.coordList, complete: h.completeCoordList},
			{name: "capture", usage: "capture <block|entity> <tag>", minArgs: 2, maxArgs: 2, run: h.coordCapture, complete: h.completeCoordCapture},
			{name: "remove", usage: "remove <tag> [mapID]", minArgs: 1, maxArgs: 2, run: h.coordRemove, complete: h.completeCoordRemove},
			{name: "tp", usage: "tp <tag> [index]", minArgs: 1, maxArgs: 2, run: h.coordTeleport, complete: h.completeCoordTeleport},
		},
	}
}

// editing returns the game and map the actor is editing.
func (h *Handler) editing(actor host.Actor) (*game.Game, game.MapDescriptor, error) {
	s, ok := h.sessions.Session(actor.ID())
	if !ok || s.State() != player.StateEditing {
		return nil, game.MapDescriptor{}, h.userError("not-editing", Reply{}, nil)
	}

	g, err := s.Game()
	if err != nil {
		return nil, game.MapDescriptor{}, h.userError("not-editing", Reply{}, err)
	}

	m, ok := g.CurrentMap()
	if !ok {
		return nil, game.MapDescriptor{}, h.userError("not-editing", Reply{Name: g.Name()}, nil)
	}

	return g, m, nil
}

// tagError maps tag store failures to replies.
func (h *Handler) tagError(data Reply, err error) error {
	switch {
	case errors.Is(err, coordtag.ErrMalformedCapture):
		data.Error = err.Error()
		return h.userError("tag-malformed", data, err)
	case errors.Is(err, coordtag.ErrInvalidName):
		data.Error = err.Error()
		return h.userError("tag-invalid", data, err)
	default:
		return err
	}
}

func (h *Handler) coordList(_ context.Context, actor host.Actor, args []string) error {
	g, m, err := h.editing(actor)
	if err != nil {
		return err
	}

	mode := coordtag.ModeAny
	if len(args) == 1 {
		mode, err = coordtag.ParseMode(args[0])
		if err != nil || mode == coordtag.ModeAny {
			return h.usageError(h.root("coord"), h.root("coord").find("list"))
		}
	}

	tags := g.Tags()
	names := tags.TagNames(mode)
	if len(names) == 0 {
		return h.reply(actor, "tag-list-empty", Reply{Map: m.ID})
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		tagMode := mode
		if tagMode == coordtag.ModeAny {
			tagMode, _ = tags.ResolveMode(name)
		}

		data := Reply{Tag: name, Mode: tagMode.String(), Map: m.ID}
		cs, err := tags.Captures(coordtag.Query{Mode: tagMode, Tag: name, MapID: m.ID})
		if err != nil {
			return h.tagError(data, err)
		}
		data.Count = len(cs)

		lines = append(lines, h.render("tag-list-entry", data))
	}

	h.send(actor, strings.Join(lines, "\n"))
	return nil
}

func (h *Handler) coordCapture(_ context.Context, actor host.Actor, args []string) error {
	g, m, err := h.editing(actor)
	if err != nil {
		return err
	}

	mode, err := coordtag.ParseMode(args[0])
	if err != nil || mode == coordtag.ModeAny {
		return h.usageError(h.root("coord"), h.root("coord").find("capture"))
	}
	tag := args[1]
	data := Reply{Tag: tag, Mode: mode.String(), Map: m.ID}

	c, err := coordtag.NewCapture(mode, coordtag.Ref{Tag: tag, MapID: m.ID}, actor.Location())
	if err != nil {
		return err
	}

	tags := g.Tags()
	stored, err := tags.Add(c)
	if errors.Is(err, coordtag.ErrModeConflict) {
		existing, _ := tags.ResolveMode(tag)
		data.Mode = existing.String()
		return h.userError("tag-mode-conflict", data, err)
	}
	if err != nil {
		return h.tagError(data, err)
	}

	err = tags.Save()
	if err != nil {
		return err
	}

	data.Index = stored.Reference().Index
	data.Capture = stored.Serialize()
	return h.reply(actor, "tag-captured", data)
}

func (h *Handler) coordRemove(_ context.Context, actor host.Actor, args []string) error {
	g, _, err := h.editing(actor)
	if err != nil {
		return err
	}

	tag := args[0]
	data := Reply{Name: g.Name(), Tag: tag}
	if len(args) == 2 {
		data.Map = args[1]
		if !slices.Contains(g.MapIDs(), data.Map) {
			return h.userError("map-not-found", data, game.ErrMapNotFound)
		}
	}

	tags := g.Tags()
	if !tags.RemoveTag(tag, data.Map) {
		return h.userError("tag-not-found", data, coordtag.ErrTagNotFound)
	}

	err = tags.Save()
	if err != nil {
		return err
	}

	return h.reply(actor, "tag-removed", data)
}

func (h *Handler) coordTeleport(_ context.Context, actor host.Actor, args []string) error {
	g, m, err := h.editing(actor)
	if err != nil {
		return err
	}

	tag := args[0]
	index := 0
	if len(args) == 2 {
		index, err = strconv.Atoi(args[1])
		if err != nil || index < 0 {
			return h.usageError(h.root("coord"), h.root("coord").find("tp"))
		}
	}
	data := Reply{Tag: tag, Index: index, Map: m.ID}

	tags := g.Tags()
	mode, ok := tags.ResolveMode(tag)
	if !ok {
		return h.userError("tag-not-found", data, coordtag.ErrTagNotFound)
	}
	data.Mode = mode.String()

	cs, err := tags.Captures(coordtag.Query{Mode: mode, Tag: tag, MapID: m.ID})
	if err != nil {
		return h.tagError(data, err)
	}
	if index >= len(cs) {
		return h.userError("tag-no-capture", data, nil)
	}

	loc := cs[index].Location()
	loc.World = g.WorldName()
	err = actor.Teleport(loc)
	if err != nil {
		return err
	}

	return h.reply(actor, "teleported", data)
}
