// internal/search/search.go
//
// Exhaustive adversarial search for the 3x3 board.
// Responsibilities:
//   - Score a position with minimax and alpha-beta pruning.
//   - Score every candidate first move for the maximizing side.
//   - Pick the best first move (lowest index wins ties).
//
// Notes:
//   - The maximizing side is fixed when the Searcher is built; the other mark minimizes.
//   - Search writes marks into the caller's board and clears them again before
//     returning, so the board must not be shared with another goroutine during a call.
//   - Candidates are visited in ascending cell index, which makes results reproducible.
package search

import (
	"math"
	"sync"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
)

const (
	// WinScore is the value of a win found at depth 0.
	WinScore = 10

	NegInf = math.MinInt
	PosInf = math.MaxInt
)

type Option func(s *Searcher)

// WithMetrics records node, leaf and prune counts for each search.
func WithMetrics() Option {
	return func(s *Searcher) {
		s.metrics = NewMetricsCollector()
	}
}

// WithParallelRoot evaluates each root candidate in its own goroutine on a
// private copy of the board. Results are identical to the serial search.
func WithParallelRoot() Option {
	return func(s *Searcher) {
		s.parallel = true
	}
}

type Searcher struct {
	max      board.Mark
	min      board.Mark
	parallel bool
	metrics  MetricsCollector
}

// New returns a Searcher that maximizes for mark.
func New(mark board.Mark, options ...Option) *Searcher {
	if mark != board.X && mark != board.O {
		panic("search: maximizing mark must be X or O")
	}
	s := &Searcher{
		max:     mark,
		min:     mark.Opponent(),
		metrics: NewNoMetricsCollector(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Mark returns the maximizing side.
func (s *Searcher) Mark() board.Mark { return s.max }

// Metrics returns the counters of the most recent search.
// Without WithMetrics the result is zero.
func (s *Searcher) Metrics() Metrics { return s.metrics.Complete() }

// Score returns the minimax value of b for the maximizing side.
// A win is worth WinScore-depth, a loss depth-WinScore, a tie 0.
// b is restored to its original contents before Score returns.
func (s *Searcher) Score(b *board.Board, depth int, maximizing bool, alpha, beta int) int {
	s.metrics.AddNode()

	switch o := board.Evaluate(*b); {
	case o.WonBy(s.max):
		s.metrics.AddLeaf()
		return WinScore - depth
	case o.WonBy(s.min):
		s.metrics.AddLeaf()
		return depth - WinScore
	case o.Status == board.StatusTie:
		s.metrics.AddLeaf()
		return 0
	}

	if maximizing {
		best := NegInf
		for i := 0; i < board.Size; i++ {
			if b[i] != board.Empty {
				continue
			}
			b[i] = s.max
			v := s.Score(b, depth+1, false, alpha, beta)
			b[i] = board.Empty

			best = max(best, v)
			alpha = max(alpha, v)
			if beta <= alpha {
				s.metrics.AddPrune()
				break
			}
		}
		return best
	}

	best := PosInf
	for i := 0; i < board.Size; i++ {
		if b[i] != board.Empty {
			continue
		}
		b[i] = s.min
		v := s.Score(b, depth+1, true, alpha, beta)
		b[i] = board.Empty

		best = min(best, v)
		beta = min(beta, v)
		if beta <= alpha {
			s.metrics.AddPrune()
			break
		}
	}
	return best
}

// MoveScore pairs a candidate first move with its minimax value.
type MoveScore struct {
	Cell  int `json:"cell"`
	Score int `json:"score"`
}

// RootScores scores every empty cell as the maximizing side's next move,
// in ascending cell order. It panics if b is already finished.
func (s *Searcher) RootScores(b *board.Board) []MoveScore {
	mustBeOpen(b)
	s.metrics.Start()

	if s.parallel {
		return s.rootScoresParallel(b)
	}

	out := make([]MoveScore, 0, board.Size)
	for i := 0; i < board.Size; i++ {
		if b[i] != board.Empty {
			continue
		}
		b[i] = s.max
		v := s.Score(b, 0, false, NegInf, PosInf)
		b[i] = board.Empty
		out = append(out, MoveScore{Cell: i, Score: v})
	}
	return out
}

func (s *Searcher) rootScoresParallel(b *board.Board) []MoveScore {
	var scores [board.Size]int
	var wg sync.WaitGroup
	for i := 0; i < board.Size; i++ {
		if b[i] != board.Empty {
			continue
		}
		wg.Add(1)
		go func(cell int, private board.Board) {
			defer wg.Done()
			private[cell] = s.max
			scores[cell] = s.Score(&private, 0, false, NegInf, PosInf)
		}(i, *b)
	}
	wg.Wait()

	out := make([]MoveScore, 0, board.Size)
	for i := 0; i < board.Size; i++ {
		if b[i] == board.Empty {
			out = append(out, MoveScore{Cell: i, Score: scores[i]})
		}
	}
	return out
}

// BestMove returns the cell with the strictly greatest root score; among
// equal scores the lowest index wins. It panics if b is already finished.
func (s *Searcher) BestMove(b *board.Board) int {
	best, bestScore := -1, NegInf
	for _, ms := range s.RootScores(b) {
		if ms.Score > bestScore {
			best, bestScore = ms.Cell, ms.Score
		}
	}
	return best
}

func mustBeOpen(b *board.Board) {
	if board.Evaluate(*b).Terminal() {
		panic("search: no legal moves, board is already finished")
	}
}
