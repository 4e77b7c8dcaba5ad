// Package session binds players to live games as editors, players or
// spectators. A player holds at most one session at a time.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pixil98/go-craftgames/internal/game"
	"github.com/pixil98/go-craftgames/internal/player"
)

// Games is the part of the game registry sessions resolve through.
type Games interface {
	FindByID(id int) (*game.Game, bool)
	OnStop(hook game.StopHook)
}

// Session marks a player as taking part in one live game. It stores only the
// game id so a stopped game is never reached through a stale session.
type Session struct {
	playerID uuid.UUID
	gameID   int
	state    player.State
	games    Games
}

func (s *Session) PlayerID() uuid.UUID {
	return s.playerID
}

func (s *Session) GameID() int {
	return s.gameID
}

// State is the player state this session holds.
func (s *Session) State() player.State {
	return s.state
}

// Game resolves the session's game through the registry.
func (s *Session) Game() (*game.Game, error) {
	g, ok := s.games.FindByID(s.gameID)
	if !ok {
		return nil, fmt.Errorf("game %d: %w", s.gameID, game.ErrGameNotFound)
	}
	return g, nil
}
