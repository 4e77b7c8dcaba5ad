package coordtag

import (
	"fmt"
	"strings"
)

// Mode selects which section of the tag document a tag lives in. ModeAny is
// only meaningful as a query filter.
type Mode int

const (
	ModeAny Mode = iota
	ModeBlock
	ModeEntity
)

// Modes lists the concrete modes in the order they are reported.
var Modes = []Mode{ModeBlock, ModeEntity}

// Label is the section name used in the tag document.
func (m Mode) Label() string {
	switch m {
	case ModeBlock:
		return "BLOCK"
	case ModeEntity:
		return "ENTITY"
	default:
		return ""
	}
}

func (m Mode) String() string {
	if m == ModeAny {
		return "any"
	}
	return strings.ToLower(m.Label())
}

// ParseMode accepts "block" or "entity" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(s) {
	case "BLOCK":
		return ModeBlock, nil
	case "ENTITY":
		return ModeEntity, nil
	default:
		return ModeAny, fmt.Errorf("unknown tag mode %q", s)
	}
}
