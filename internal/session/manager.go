package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-craftgames/internal/game"
	"github.com/pixil98/go-craftgames/internal/player"
)

type Manager struct {
	states *player.StateRegistry
	games  Games

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a manager and hooks it into games so sessions of a
// stopped game are released.
func NewManager(states *player.StateRegistry, games Games) *Manager {
	m := &Manager{
		states:   states,
		games:    games,
		sessions: make(map[uuid.UUID]*Session),
	}
	games.OnStop(m.releaseGame)
	return m
}

// Editor returns the player's editing session for g, claiming the editing
// state on first use.
func (m *Manager) Editor(playerID uuid.UUID, g *game.Game) (*Session, error) {
	return m.join(playerID, g, player.StateEditing)
}

// Player returns the player's playing session for g.
func (m *Manager) Player(playerID uuid.UUID, g *game.Game) (*Session, error) {
	return m.join(playerID, g, player.StatePlaying)
}

// Spectator returns the player's watching session for g.
func (m *Manager) Spectator(playerID uuid.UUID, g *game.Game) (*Session, error) {
	return m.join(playerID, g, player.StateWatching)
}

func (m *Manager) join(playerID uuid.UUID, g *game.Game, state player.State) (*Session, error) {
	gameID := g.ID()
	if gameID == game.DummyID {
		return nil, fmt.Errorf("%s: %w", g.Name(), game.ErrNotLive)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[playerID]; ok {
		switch {
		case m.states.Get(playerID) != s.state:
			// The state was reset elsewhere, the cached session is stale
			delete(m.sessions, playerID)
		case s.gameID == gameID && s.state == state:
			return s, nil
		default:
			return nil, fmt.Errorf("%s in game %d: %w", s.state, s.gameID, player.ErrConcurrentPlayerState)
		}
	}

	err := m.states.Claim(playerID, state)
	if err != nil {
		return nil, err
	}

	s := &Session{
		playerID: playerID,
		gameID:   gameID,
		state:    state,
		games:    m.games,
	}
	m.sessions[playerID] = s

	slog.Info("session opened", "player", playerID, "game", gameID, "state", state)
	return s, nil
}

// Session returns the player's current session.
func (m *Manager) Session(playerID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[playerID]
	return s, ok
}

// Sessions lists the sessions bound to game id.
func (m *Manager) Sessions(gameID int) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Session
	for _, s := range m.sessions {
		if s.gameID == gameID {
			out = append(out, s)
		}
	}
	return out
}

// Leave closes the player's session and resets their state. It returns the
// closed session, if there was one.
func (m *Manager) Leave(playerID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[playerID]
	if !ok {
		return nil, false
	}

	m.release(s)
	return s, true
}

func (m *Manager) releaseGame(g *game.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gameID := g.ID()
	for _, s := range m.sessions {
		if s.gameID == gameID {
			m.release(s)
		}
	}
}

// release must be called with mu held.
func (m *Manager) release(s *Session) {
	delete(m.sessions, s.playerID)
	if m.states.Get(s.playerID) == s.state {
		m.states.Release(s.playerID)
	}
	slog.Info("session closed", "player", s.playerID, "game", s.gameID, "state", s.state)
}
