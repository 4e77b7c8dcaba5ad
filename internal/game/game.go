package game

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/pixil98/go-craftgames/internal/coordtag"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/script"
)

// DummyID is the id of a game that has not been registered.
const DummyID = -1

// MapDescriptor is one entry of a layout's map list. Fields other than id,
// alias and path are kept in Extra as read.
type MapDescriptor struct {
	ID    string
	Alias string
	Path  string
	Extra map[string]any
}

// Game is one instance of a game type. A dummy game (ID -1) only carries the
// validated layout; a live game is registered under a unique id and may have
// a generated map world.
type Game struct {
	name       string
	layoutPath string
	scripts    map[string]script.Script
	scriptIDs  []string
	tags       *coordtag.Store
	maps       []MapDescriptor
	worlds     host.WorldContainer
	label      string

	mu       sync.RWMutex
	id       int
	current  *MapDescriptor
	joinable bool
	stopped  bool
}

func (g *Game) ID() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.id
}

func (g *Game) Name() string {
	return g.name
}

// LayoutPath is the layout file the game was built from.
func (g *Game) LayoutPath() string {
	return g.layoutPath
}

func (g *Game) Tags() *coordtag.Store {
	return g.tags
}

func (g *Game) Maps() []MapDescriptor {
	out := make([]MapDescriptor, len(g.maps))
	for i, m := range g.maps {
		m.Extra = maps.Clone(m.Extra)
		out[i] = m
	}
	return out
}

// MapIDs lists the map ids in layout order.
func (g *Game) MapIDs() []string {
	ids := make([]string, len(g.maps))
	for i, m := range g.maps {
		ids[i] = m.ID
	}
	return ids
}

// Map looks up a map by id, then by alias.
func (g *Game) Map(idOrAlias string) (MapDescriptor, error) {
	for _, m := range g.maps {
		if m.ID == idOrAlias {
			return m, nil
		}
	}
	for _, m := range g.maps {
		if m.Alias == idOrAlias {
			return m, nil
		}
	}
	return MapDescriptor{}, fmt.Errorf("%s has no map %q: %w", g.name, idOrAlias, ErrMapNotFound)
}

// ScriptIDs lists the script ids in layout order.
func (g *Game) ScriptIDs() []string {
	return slices.Clone(g.scriptIDs)
}

func (g *Game) Script(id string) (script.Script, bool) {
	s, ok := g.scripts[id]
	return s, ok
}

// WorldName is the world directory a live game generates its map into.
func (g *Game) WorldName() string {
	return fmt.Sprintf("%s_%d", g.label, g.ID())
}

// CurrentMap returns the map generated for this game, if any.
func (g *Game) CurrentMap() (MapDescriptor, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.current == nil {
		return MapDescriptor{}, false
	}
	return *g.current, true
}

// CanJoin reports whether players may join right now: the game is live, a
// map has been generated and the game has not stopped.
func (g *Game) CanJoin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.joinable && !g.stopped
}

// GenerateMap selects a map by id or alias and clones its template into the
// game's world directory, replacing a previously generated world.
func (g *Game) GenerateMap(idOrAlias string) (MapDescriptor, error) {
	m, err := g.Map(idOrAlias)
	if err != nil {
		return MapDescriptor{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.id == DummyID || g.stopped {
		return MapDescriptor{}, fmt.Errorf("%s: %w", g.name, ErrNotLive)
	}

	world := fmt.Sprintf("%s_%d", g.label, g.id)
	if g.current != nil {
		if err := g.worlds.Remove(world); err != nil {
			return MapDescriptor{}, fmt.Errorf("unloading map %s: %w", g.current.ID, err)
		}
		g.current = nil
		g.joinable = false
	}

	err = g.worlds.Generate(world, m.Path)
	if err != nil {
		return MapDescriptor{}, fmt.Errorf("generating map %s: %w", m.ID, err)
	}

	g.current = &m
	g.joinable = true
	slog.Info("map generated", "game", g.name, "id", g.id, "map", m.ID, "world", world)

	return m, nil
}

// shutdown marks the game stopped and removes its world.
func (g *Game) shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopped = true
	g.joinable = false
	if g.current == nil {
		return nil
	}

	g.current = nil
	world := fmt.Sprintf("%s_%d", g.label, g.id)
	if err := g.worlds.Remove(world); err != nil {
		return fmt.Errorf("removing world %s: %w", world, err)
	}
	return nil
}
