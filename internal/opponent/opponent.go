// internal/opponent/opponent.go
//
// Move selection for the automated opponent.
// A biased coin, weighted by the active difficulty, decides between a uniformly
// random legal move and the deterministic search. The coin is drawn fresh on
// every call; Hard never draws at all.
package opponent

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/search"
)

type Option func(o *Opponent)

// WithSource replaces the default time-seeded random source.
func WithSource(src rand.Source) Option {
	return func(o *Opponent) {
		if src != nil {
			o.rng = rand.New(src)
		}
	}
}

// WithSeed makes the random half of the policy reproducible.
func WithSeed(seed uint64) Option {
	return WithSource(rand.NewSource(seed))
}

// WithSearchOptions forwards options to every search the opponent runs.
func WithSearchOptions(options ...search.Option) Option {
	return func(o *Opponent) {
		o.searchOptions = append(o.searchOptions, options...)
	}
}

type Opponent struct {
	mark          board.Mark
	searchOptions []search.Option

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Decision is the opponent's chosen cell and how it was reached.
type Decision struct {
	Cell    int
	Random  bool           // search was bypassed
	Metrics search.Metrics // zero unless search.WithMetrics was given
}

// New returns an opponent playing mark.
func New(mark board.Mark, options ...Option) *Opponent {
	if mark != board.X && mark != board.O {
		panic("opponent: mark must be X or O")
	}
	o := &Opponent{mark: mark}
	for _, option := range options {
		option(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return o
}

func (o *Opponent) Mark() board.Mark { return o.mark }

// ChooseMove returns the cell the opponent plays on b at difficulty d.
// b is used as scratch space during search and is unchanged on return.
// It panics if b has no legal move.
func (o *Opponent) ChooseMove(b *board.Board, d Difficulty) int {
	return o.Decide(b, d).Cell
}

// Decide is ChooseMove with the details of the decision.
func (o *Opponent) Decide(b *board.Board, d Difficulty) Decision {
	if board.Evaluate(*b).Terminal() {
		panic("opponent: no legal moves, board is already finished")
	}

	if cell, ok := o.maybeRandom(b, d.RandomWeight()); ok {
		return Decision{Cell: cell, Random: true}
	}

	s := search.New(o.mark, o.searchOptions...)
	cell := s.BestMove(b)
	return Decision{Cell: cell, Metrics: s.Metrics()}
}

// maybeRandom flips the biased coin and, on heads, picks a uniform empty cell.
func (o *Opponent) maybeRandom(b *board.Board, weight float64) (int, bool) {
	if weight <= 0 {
		return -1, false
	}
	empties := b.Empties()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rng.Float64() >= weight {
		return -1, false
	}
	return empties[o.rng.Intn(len(empties))], true
}
