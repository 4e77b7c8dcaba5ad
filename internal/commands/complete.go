package commands

import (
	"strconv"
	"strings"

	"github.com/pixil98/go-craftgames/internal/coordtag"
	"github.com/pixil98/go-craftgames/internal/game"
	"github.com/pixil98/go-craftgames/internal/host"
)

// Complete returns the candidates for the last word of line. A line ending
// in a space completes a new word.
func (h *Handler) Complete(actor host.Actor, line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasSuffix(line, " ") {
		fields = append(fields, "")
	}
	word := fields[len(fields)-1]

	if len(fields) == 1 {
		names := make([]string, len(h.roots))
		for i, r := range h.roots {
			names[i] = r.name
		}
		return withPrefix(names, strings.TrimPrefix(word, "/"))
	}

	root := h.root(strings.TrimPrefix(fields[0], "/"))
	if root == nil {
		return nil
	}

	if len(fields) == 2 {
		names := make([]string, len(root.subs))
		for i, s := range root.subs {
			names[i] = s.name
		}
		return withPrefix(names, word)
	}

	sub := root.find(fields[1])
	if sub == nil || sub.complete == nil {
		return nil
	}

	prev := fields[2 : len(fields)-1]
	if sub.maxArgs >= 0 && len(prev) >= sub.maxArgs {
		return nil
	}
	return withPrefix(sub.complete(actor, prev), word)
}

func withPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(prefix)) {
			out = append(out, c)
		}
	}
	return out
}

func (h *Handler) dummyOrNil(name string) *game.Game {
	g, err := h.games.BuildDummy(name)
	if err != nil {
		return nil
	}
	return g
}

func (h *Handler) completeGameMap(_ host.Actor, prev []string) []string {
	switch len(prev) {
	case 0:
		return h.catalog.GameNames()
	case 1:
		if g := h.dummyOrNil(prev[0]); g != nil {
			return g.MapIDs()
		}
	}
	return nil
}

func (h *Handler) completeLiveID(_ host.Actor, prev []string) []string {
	if len(prev) != 0 {
		return nil
	}

	var ids []string
	for _, g := range h.games.Find(game.Filter{}) {
		ids = append(ids, strconv.Itoa(g.ID()))
	}
	return ids
}

func (h *Handler) completeScript(_ host.Actor, prev []string) []string {
	switch len(prev) {
	case 0:
		return h.catalog.GameNames()
	case 1:
		if g := h.dummyOrNil(prev[0]); g != nil {
			return g.ScriptIDs()
		}
	case 2:
		return []string{"execute"}
	}
	return nil
}

func modeNames() []string {
	names := make([]string, len(coordtag.Modes))
	for i, m := range coordtag.Modes {
		names[i] = m.String()
	}
	return names
}

func (h *Handler) completeCoordList(_ host.Actor, prev []string) []string {
	if len(prev) == 0 {
		return modeNames()
	}
	return nil
}

func (h *Handler) completeCoordCapture(actor host.Actor, prev []string) []string {
	switch len(prev) {
	case 0:
		return modeNames()
	case 1:
		mode, err := coordtag.ParseMode(prev[0])
		if err != nil {
			return nil
		}
		if g, _, err := h.editing(actor); err == nil {
			return g.Tags().TagNames(mode)
		}
	}
	return nil
}

func (h *Handler) completeCoordRemove(actor host.Actor, prev []string) []string {
	g, _, err := h.editing(actor)
	if err != nil {
		return nil
	}

	switch len(prev) {
	case 0:
		return g.Tags().TagNames(coordtag.ModeAny)
	case 1:
		return g.MapIDs()
	}
	return nil
}

func (h *Handler) completeCoordTeleport(actor host.Actor, prev []string) []string {
	g, m, err := h.editing(actor)
	if err != nil {
		return nil
	}

	switch len(prev) {
	case 0:
		return g.Tags().TagNames(coordtag.ModeAny)
	case 1:
		mode, ok := g.Tags().ResolveMode(prev[0])
		if !ok {
			return nil
		}
		cs, err := g.Tags().Captures(coordtag.Query{Mode: mode, Tag: prev[0], MapID: m.ID})
		if err != nil {
			return nil
		}
		idx := make([]string, len(cs))
		for i := range cs {
			idx[i] = strconv.Itoa(i)
		}
		return idx
	}
	return nil
}
