// Package coordtag stores named lists of coordinates ("tags") per map of a
// game. Tags live in a YAML document shaped as
//
//	BLOCK:
//	  <tag>:
//	    <mapID>: ["x,y,z", ...]
//	ENTITY:
//	  <tag>:
//	    <mapID>: ["x,y,z,yaw,pitch", ...]
package coordtag

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/pixil98/go-craftgames/internal/document"
)

// Query filters captures. Zero fields match everything.
type Query struct {
	Mode  Mode
	Tag   string
	MapID string
}

type Store struct {
	mu   sync.RWMutex
	doc  *document.Document
	maps func() []string
}

// NewStore wraps a game's tag document. maps lists the map ids of the game
// and is consulted whenever a query leaves the map open.
func NewStore(doc *document.Document, maps func() []string) *Store {
	return &Store{
		doc:  doc,
		maps: maps,
	}
}

// Key is the document path of one tag's list on one map.
func Key(mode Mode, tag string, mapID string) string {
	return mode.Label() + "." + tag + "." + mapID
}

// Document returns the backing tag document.
func (s *Store) Document() *document.Document {
	return s.doc
}

// TagNames lists tag names in document order. ModeAny lists block tags
// followed by entity tags.
func (s *Store) TagNames(mode Mode) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tagNames(mode)
}

func (s *Store) tagNames(mode Mode) []string {
	if mode == ModeAny {
		var names []string
		for _, m := range Modes {
			names = append(names, s.tagNames(m)...)
		}
		return names
	}

	return s.doc.Keys(mode.Label())
}

// Captures returns every capture matching q. Open filters fan out over all
// modes, all tags of the mode and all maps of the game, in that order.
func (s *Store) Captures(q Query) ([]Capture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.captures(q)
}

func (s *Store) captures(q Query) ([]Capture, error) {
	var out []Capture

	switch {
	case q.Mode == ModeAny:
		for _, m := range Modes {
			sub := q
			sub.Mode = m
			c, err := s.captures(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, c...)
		}
		return out, nil

	case q.Tag == "":
		for _, tag := range s.tagNames(q.Mode) {
			sub := q
			sub.Tag = tag
			c, err := s.captures(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, c...)
		}
		return out, nil

	case q.MapID == "":
		for _, mapID := range s.maps() {
			sub := q
			sub.MapID = mapID
			c, err := s.captures(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, c...)
		}
		return out, nil
	}

	records := s.doc.StringList(Key(q.Mode, q.Tag, q.MapID))
	out = make([]Capture, 0, len(records))
	for i, rec := range records {
		ref := Ref{MapID: q.MapID, Tag: q.Tag, Index: i}
		c, err := Parse(q.Mode, ref, rec)
		if err != nil {
			return nil, fmt.Errorf("tag %s on map %s index %d: %w", q.Tag, q.MapID, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ResolveMode finds the section a tag lives in. Entity tags take precedence.
func (s *Store) ResolveMode(tag string) (Mode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.resolveMode(tag)
}

func (s *Store) resolveMode(tag string) (Mode, bool) {
	switch {
	case slices.Contains(s.tagNames(ModeEntity), tag):
		return ModeEntity, true
	case slices.Contains(s.tagNames(ModeBlock), tag):
		return ModeBlock, true
	default:
		return ModeAny, false
	}
}

// RemoveTag drops a tag's list on mapID, or the whole tag when mapID is
// empty. It reports false when the tag does not exist.
func (s *Store) RemoveTag(name string, mapID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, ok := s.resolveMode(name)
	if !ok {
		return false
	}

	key := mode.Label() + "." + name
	if mapID != "" {
		key = Key(mode, name, mapID)
	}

	s.doc.Remove(key)
	return true
}

// Add appends c to its tag's list on its map and returns the capture with
// its index filled in. The document is not saved.
func (s *Store) Add(c Capture) (Capture, error) {
	ref := c.Reference()
	if err := validateName("tag", ref.Tag); err != nil {
		return nil, err
	}
	if err := validateName("map", ref.MapID); err != nil {
		return nil, err
	}
	if !slices.Contains(s.maps(), ref.MapID) {
		return nil, fmt.Errorf("map %q is not part of this game", ref.MapID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if mode, ok := s.resolveMode(ref.Tag); ok && mode != c.Mode() {
		return nil, fmt.Errorf("%s is a %s tag: %w", ref.Tag, mode, ErrModeConflict)
	}

	key := Key(c.Mode(), ref.Tag, ref.MapID)
	records := s.doc.StringList(key)
	ref.Index = len(records)

	var stored Capture
	switch v := c.(type) {
	case *BlockCapture:
		cp := *v
		cp.Ref = ref
		stored = &cp
	case *EntityCapture:
		cp := *v
		cp.Ref = ref
		stored = &cp
	default:
		return nil, fmt.Errorf("unsupported capture type %T", c)
	}

	err := s.doc.Set(key, append(records, c.Serialize()))
	if err != nil {
		return nil, fmt.Errorf("storing capture: %w", err)
	}

	return stored, nil
}

// Save persists the tag document.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.doc.Save()
}

func validateName(kind string, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is required: %w", kind, ErrInvalidName)
	}
	if strings.ContainsAny(name, ".,") {
		return fmt.Errorf("%s name %q may not contain '.' or ',': %w", kind, name, ErrInvalidName)
	}
	return nil
}
