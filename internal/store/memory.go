// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Sessions live only as long as the process, which is all the game needs.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - The map is guarded by an RWMutex; each game has its own mutex, so a long
//     Update on one session never stalls reads or writes of another.
//   - Update runs a callback while holding that game's lock, so a session's
//     board is never mutated by two requests at once.
//   - ErrNotFound is returned for unknown game IDs.
//   - Idle sessions are dropped by the sweeper (see sweep.go).

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/game"
)

var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a game state.
	Save(ctx context.Context, g *game.Game) error

	// Get returns a copy of the game with the given ID.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn on the stored game while holding exclusive access and
	// returns fn's error. Changes made by fn are kept even if it fails.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) error

	// Idle lists the IDs of games last updated before cutoff.
	Idle(ctx context.Context, cutoff time.Time) ([]string, error)

	// Delete drops a game. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error
}

// entry pairs a game with the lock that serializes access to it.
type entry struct {
	mu   sync.Mutex
	g    *game.Game
	gone bool // set once deleted; late Updates then see ErrNotFound
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards the games map, not the games
	games map[string]*entry // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*entry)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = &entry{g: g}
	return nil
}

func (m *memory) lookup(id string) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	return e, ok
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	e, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return nil, ErrNotFound
	}
	return e.g.Clone(), nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(g *game.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, ok := m.lookup(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrNotFound
	}
	return fn(e.g)
}

func (m *memory) Idle(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, e := range m.games {
		e.mu.Lock()
		idle := e.g.UpdatedAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.gone = true
		e.mu.Unlock()
	}
	return nil
}
