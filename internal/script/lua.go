package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/pixil98/go-craftgames/internal/document"
	"golang.org/x/text/encoding"
)

type LuaScript struct {
	id   string
	path string
	enc  encoding.Encoding

	mu      sync.Mutex
	vars    map[string]any
	printer func(string)
	state   *lua.State
}

func NewLuaScript(id string, path string, enc encoding.Encoding) *LuaScript {
	return &LuaScript{
		id:   id,
		path: path,
		enc:  enc,
		vars: map[string]any{},
	}
}

func (s *LuaScript) ID() string {
	return s.id
}

func (s *LuaScript) Path() string {
	return s.path
}

// SetVariable exposes value as a global to the next compiled chunk. Only
// strings, booleans and numbers are supported.
func (s *LuaScript) SetVariable(name string, value any) error {
	switch value.(type) {
	case string, bool, int, int64, float64:
	default:
		return fmt.Errorf("variable %s: unsupported type %T", name, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars[name] = value
	return nil
}

func (s *LuaScript) SetPrinter(p func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.printer = p
}

func (s *LuaScript) Parse() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.parse()
}

func (s *LuaScript) parse() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", s.path, err)
	}

	src, err := document.DecodeBytes(raw, s.enc)
	if err != nil {
		return fmt.Errorf("decoding script %s: %w", s.path, err)
	}

	state := lua.NewState()
	lua.OpenLibraries(state)
	s.bind(state)

	if err := lua.LoadBuffer(state, string(src), "@"+s.path, ""); err != nil {
		return &RuntimeError{Script: s.id, Err: err}
	}

	s.state = state
	return nil
}

func (s *LuaScript) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		if err := s.parse(); err != nil {
			return err
		}
	}

	// The compiled chunk is consumed by the call
	state := s.state
	s.state = nil

	slog.DebugContext(ctx, "executing script", "script", s.id, "path", s.path)
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return &RuntimeError{Script: s.id, Err: err}
	}

	return nil
}

// bind must be called with mu held.
func (s *LuaScript) bind(state *lua.State) {
	for name, v := range s.vars {
		switch val := v.(type) {
		case string:
			state.PushString(val)
		case bool:
			state.PushBoolean(val)
		case int:
			state.PushInteger(val)
		case int64:
			state.PushInteger(int(val))
		case float64:
			state.PushNumber(val)
		}
		state.SetGlobal(name)
	}

	printer := s.printer
	id := s.id
	state.Register("print", func(state *lua.State) int {
		n := state.Top()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			str, _ := lua.ToStringMeta(state, i)
			state.Pop(1)
			parts = append(parts, str)
		}

		line := strings.Join(parts, "\t")
		if printer != nil {
			printer(line)
		} else {
			slog.Info("script output", "script", id, "line", line)
		}
		return 0
	})
}
