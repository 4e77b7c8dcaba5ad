// Package script runs the scripted logic attached to game layouts.
package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
)

var (
	// ErrScriptEngineNotFound is returned for script files no engine can run.
	ErrScriptEngineNotFound = errors.New("no script engine for file")
)

// RuntimeError is a failure raised while compiling or running a script.
type RuntimeError struct {
	Script string
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Script is a handle on a single script file. Parse compiles it, Execute
// runs the last compiled chunk and compiles on demand.
type Script interface {
	ID() string
	Path() string
	SetVariable(name string, value any) error
	// SetPrinter redirects script output, by default it is logged.
	SetPrinter(func(string))
	Parse() error
	Execute(ctx context.Context) error
}

// Load picks the engine for path by file extension.
func Load(id string, path string, enc encoding.Encoding) (Script, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return NewLuaScript(id, path, enc), nil
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrScriptEngineNotFound)
	}
}
