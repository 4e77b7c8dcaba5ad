package player

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StateRegistry tracks the current State of every player. Players without
// an entry are in StateNone.
type StateRegistry struct {
	mu     sync.RWMutex
	states map[uuid.UUID]State
}

func NewStateRegistry() *StateRegistry {
	return &StateRegistry{
		states: map[uuid.UUID]State{},
	}
}

// Get returns the player's state, StateNone for unknown players.
func (r *StateRegistry) Get(id uuid.UUID) State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.states[id]
}

// Set overwrites the player's state without checking the current one.
func (r *StateRegistry) Set(id uuid.UUID, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.set(id, s)
}

// Claim moves a player from StateNone into s. If the player already holds a
// non-none state the claim fails with ErrConcurrentPlayerState and the
// recorded state is left untouched.
func (r *StateRegistry) Claim(id uuid.UUID, s State) error {
	if s == StateNone {
		return fmt.Errorf("cannot claim state %s", s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur := r.states[id]; cur != StateNone {
		return fmt.Errorf("claiming %s while %s: %w", s, cur, ErrConcurrentPlayerState)
	}

	r.set(id, s)
	return nil
}

// Release puts the player back into StateNone.
func (r *StateRegistry) Release(id uuid.UUID) {
	r.Set(id, StateNone)
}

func (r *StateRegistry) set(id uuid.UUID, s State) {
	if s == StateNone {
		delete(r.states, id)
		return
	}
	r.states[id] = s
}
