package game

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/pixil98/go-craftgames/internal/coordtag"
	"github.com/pixil98/go-craftgames/internal/document"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/script"
	"golang.org/x/text/encoding"
)

// TagExtension is the required extension of coordinate tag documents.
const TagExtension = ".yml"

var worldIDPattern = regexp.MustCompile(`_(\d+)`)

// Catalog resolves game types to their layout files.
type Catalog interface {
	// LayoutPath returns the layout file of a game type, relative to the
	// data folder unless absolute.
	LayoutPath(name string) (string, bool)
	// DirectoryLabel prefixes the world directories of live games.
	DirectoryLabel() string
}

// Filter selects live games. Zero fields match every game.
type Filter struct {
	Name    string
	CanJoin *bool
}

// StopHook is run for a game before it is removed from the registry.
type StopHook func(*Game)

type Registry struct {
	catalog Catalog
	dataDir string
	enc     encoding.Encoding
	worlds  host.WorldContainer

	mu     sync.RWMutex
	live   map[int]*Game
	nextID int
	hooks  []StopHook
}

// NewRegistry builds games from layouts found through catalog. Relative
// paths in layouts are resolved against dataDir and files are read with enc.
func NewRegistry(catalog Catalog, dataDir string, enc encoding.Encoding, worlds host.WorldContainer) *Registry {
	return &Registry{
		catalog: catalog,
		dataDir: dataDir,
		enc:     enc,
		worlds:  worlds,
		live:    make(map[int]*Game),
	}
}

// OnStop registers hook to run whenever a live game stops.
func (r *Registry) OnStop(hook StopHook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks, hook)
}

// BuildDummy validates the layout of game type name and returns an
// unregistered game.
func (r *Registry) BuildDummy(name string) (*Game, error) {
	if name == "" {
		return nil, configErrorf("", "game name is required")
	}
	// Game type names are case-insensitive; keep the canonical form.
	name = strings.ToLower(name)
	if unicode.IsDigit([]rune(name)[0]) {
		return nil, configErrorf("", "game name %q should never start with a number", name)
	}

	rel, ok := r.catalog.LayoutPath(name)
	if !ok {
		return nil, fmt.Errorf("game %q is not defined in config.yml: %w", name, ErrGameNotFound)
	}
	layoutPath := r.resolve(rel)

	layout, err := r.loadLayout(name, layoutPath)
	if err != nil {
		return nil, err
	}

	mapList, err := r.loadMaps(layout)
	if err != nil {
		return nil, err
	}

	scripts, scriptIDs, err := r.loadScripts(layout)
	if err != nil {
		return nil, err
	}

	g := &Game{
		id:         DummyID,
		name:       name,
		layoutPath: layoutPath,
		scripts:    scripts,
		scriptIDs:  scriptIDs,
		maps:       mapList,
		worlds:     r.worlds,
		label:      r.catalog.DirectoryLabel(),
	}

	tags, err := r.loadTags(layout, g.MapIDs)
	if err != nil {
		return nil, err
	}
	g.tags = tags

	return g, nil
}

// Start builds game type name and registers it under a fresh id. Ids never
// collide with world directories left behind by an earlier process.
func (r *Registry) Start(name string) (*Game, error) {
	g, err := r.BuildDummy(name)
	if err != nil {
		return nil, err
	}

	dirs, err := r.worlds.ListDirs()
	if err != nil {
		return nil, fmt.Errorf("scanning world container: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := g.label + "_"
	for _, dir := range dirs {
		if !strings.HasPrefix(dir, prefix) {
			continue
		}
		matches := worldIDPattern.FindAllStringSubmatch(dir, -1)
		if len(matches) == 0 {
			continue
		}
		id, err := strconv.Atoi(matches[len(matches)-1][1])
		if err != nil {
			continue
		}
		if id >= r.nextID {
			r.nextID = id + 1
		}
	}

	for r.live[r.nextID] != nil {
		r.nextID++
	}

	g.mu.Lock()
	g.id = r.nextID
	g.mu.Unlock()

	r.live[r.nextID] = g
	r.nextID++

	slog.Info("game started", "game", name, "id", g.id)
	return g, nil
}

// Find returns the live games matching every set field of f, ordered by id.
func (r *Registry) Find(f Filter) []*Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Game
	for _, g := range r.live {
		if f.Name != "" && !strings.EqualFold(g.name, f.Name) {
			continue
		}
		if f.CanJoin != nil && g.CanJoin() != *f.CanJoin {
			continue
		}
		out = append(out, g)
	}

	slices.SortFunc(out, func(a, b *Game) int {
		return a.ID() - b.ID()
	})
	return out
}

func (r *Registry) FindByID(id int) (*Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.live[id]
	return g, ok
}

// Stop runs the stop hooks for game id, removes its world and drops it from
// the registry. The game is dropped even when its world cannot be removed.
func (r *Registry) Stop(id int) error {
	r.mu.RLock()
	g, ok := r.live[id]
	hooks := slices.Clone(r.hooks)
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no game is running with id %d: %w", id, ErrGameNotFound)
	}

	for _, hook := range hooks {
		hook(g)
	}

	err := g.shutdown()
	r.purge(id)

	slog.Info("game stopped", "game", g.name, "id", id)
	return err
}

// StopAll stops every live game.
func (r *Registry) StopAll() error {
	var errs []error
	for _, g := range r.Find(Filter{}) {
		if err := r.Stop(g.ID()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) purge(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.live, id)
}

func (r *Registry) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.dataDir, path)
}

func (r *Registry) loadLayout(name string, path string) (*document.Document, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return nil, configErrorf(path, "game %q does not have a layout file", name)
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "unable to read layout", Err: err}
	}

	layout, err := document.Load(path, r.enc)
	if errors.Is(err, document.ErrEmpty) {
		return nil, configErrorf(path, "layout file is empty")
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "unable to read layout", Err: err}
	}

	return layout, nil
}

func (r *Registry) loadMaps(layout *document.Document) ([]MapDescriptor, error) {
	path := layout.Path()

	entries, err := layout.MapEntries("maps")
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "unable to read maps", Err: err}
	}

	var (
		out     []MapDescriptor
		changed bool
	)
	for _, e := range entries {
		entry := e.Fields
		id, ok := stringField(entry, "id")
		if !ok {
			return nil, configErrorf(path, "entry 'id' of map %d is missing", e.Index)
		}
		if slices.ContainsFunc(out, func(m MapDescriptor) bool { return m.ID == id }) {
			return nil, configErrorf(path, "map %s is defined twice", id)
		}

		alias, ok := stringField(entry, "alias")
		if !ok {
			alias = id
			if err := layout.SetListField("maps", e.Index, "alias", id); err != nil {
				return nil, &ConfigError{Path: path, Reason: "unable to set alias of map " + id, Err: err}
			}
			changed = true
		}

		mapPath, ok := stringField(entry, "path")
		if !ok {
			return nil, configErrorf(path, "entry 'path' of map %s is missing", id)
		}

		extra := make(map[string]any)
		for k, v := range entry {
			switch k {
			case "id", "alias", "path":
			default:
				extra[k] = v
			}
		}

		out = append(out, MapDescriptor{
			ID:    id,
			Alias: alias,
			Path:  r.resolve(mapPath),
			Extra: extra,
		})
	}

	if changed {
		if err := layout.Save(); err != nil {
			return nil, fmt.Errorf("saving map aliases: %w", err)
		}
	}

	return out, nil
}

func (r *Registry) loadScripts(layout *document.Document) (map[string]script.Script, []string, error) {
	path := layout.Path()

	entries, err := layout.MapList("scripts")
	if err != nil {
		return nil, nil, &ConfigError{Path: path, Reason: "unable to read scripts", Err: err}
	}

	scripts := make(map[string]script.Script, len(entries))
	var ids []string
	for i, entry := range entries {
		id, ok := stringField(entry, "id")
		if !ok {
			return nil, nil, configErrorf(path, "entry 'id' of script %d is missing", i)
		}
		if _, dup := scripts[id]; dup {
			return nil, nil, configErrorf(path, "script %s is defined twice", id)
		}

		rel, ok := stringField(entry, "path")
		if !ok {
			return nil, nil, configErrorf(path, "entry 'path' of script %s is missing", id)
		}

		file := r.resolve(rel)
		info, err := os.Stat(file)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
			return nil, nil, configErrorf(path, "unable to locate the script %s", file)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading script %s: %w", file, err)
		}

		s, err := script.Load(id, file, r.enc)
		if err != nil {
			return nil, nil, err
		}

		scripts[id] = s
		ids = append(ids, id)
	}

	return scripts, ids, nil
}

func (r *Registry) loadTags(layout *document.Document, mapIDs func() []string) (*coordtag.Store, error) {
	path := layout.Path()

	rel, ok := layout.String("coordinate-tags.path")
	if !ok || rel == "" {
		return nil, configErrorf(path, "coordinate-tags.path is not defined")
	}

	file := r.resolve(rel)
	if filepath.Ext(file) != TagExtension {
		return nil, configErrorf(path, "tag file %s has the wrong extension (rename it to %s)", filepath.Base(file), TagExtension)
	}

	err := os.MkdirAll(filepath.Dir(file), 0755)
	if err != nil {
		return nil, fmt.Errorf("creating tag directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create tag file %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing tag file %s: %w", file, err)
	}

	doc, err := document.Open(file, r.enc)
	if err != nil {
		return nil, &ConfigError{Path: file, Reason: "unable to read coordinate tags", Err: err}
	}

	return coordtag.NewStore(doc, mapIDs), nil
}

// stringField reads a scalar field. Unquoted numbers such as "id: 1" count.
func stringField(m map[string]any, key string) (string, bool) {
	switch v := m[key].(type) {
	case string:
		return v, v != ""
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}
