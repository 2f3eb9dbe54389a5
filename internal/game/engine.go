// internal/game/engine.go
//
// Session logic for a tic-tac-toe game.
// Responsibilities:
//   - Create sessions (pvp or vs the automated opponent).
//   - Validate and apply human moves, then evaluate the board.
//   - Ask a Mover for the opponent's cell on a private copy of the board.
//   - Track state transitions: in_progress → x_won | o_won | tie, and resets.
//   - Keep a scoreboard across rounds.
//
// Notes:
//   - X always moves first; in ai mode the opponent is always O, the second mover.
//   - A finished round only leaves its terminal state through Reset.
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/opponent"
)

// DefaultDifficulty is used in ai mode when none is given.
const DefaultDifficulty = opponent.Medium

// New constructs a session in its first round.
func New(mode Mode, d opponent.Difficulty) (*Game, error) {
	if mode != ModePvP && mode != ModeAI {
		return nil, ErrBadMode
	}
	g := &Game{
		ID:   uuid.NewString(),
		Mode: mode,
	}
	if mode == ModeAI {
		if d == "" {
			d = DefaultDifficulty
		}
		if !d.Valid() {
			return nil, errInvalidDifficulty(d)
		}
		g.Difficulty = d
		g.AIMark = board.O
	}
	g.Reset()
	return g, nil
}

// Reset starts a fresh round on an empty board. Scores are kept.
func (g *Game) Reset() {
	g.Board = board.Board{}
	g.Turn = board.X
	g.Outcome = board.Evaluate(g.Board)
	g.History = nil
	g.Round++
	g.touch()
}

// SetDifficulty changes the difficulty used for the opponent's next move.
func (g *Game) SetDifficulty(d opponent.Difficulty) error {
	if g.Mode != ModeAI {
		return ErrNoOpponent
	}
	if !d.Valid() {
		return errInvalidDifficulty(d)
	}
	g.Difficulty = d
	g.touch()
	return nil
}

// OpponentToMove reports whether the automated side should play next.
func (g *Game) OpponentToMove() bool {
	return g.Mode == ModeAI && !g.Outcome.Terminal() && g.Turn == g.AIMark
}

// Play applies a human move for the side to move.
func (g *Game) Play(cell int) (board.Outcome, error) {
	if g.Outcome.Terminal() {
		return g.Outcome, ErrGameOver
	}
	if g.OpponentToMove() {
		return g.Outcome, ErrNotYourTurn
	}
	return g.apply(cell)
}

// PlayOpponent lets m choose and play the automated side's move.
// m receives a copy of the board, never the session's own.
func (g *Game) PlayOpponent(m Mover) (int, board.Outcome, error) {
	if g.Mode != ModeAI {
		return -1, g.Outcome, ErrNoOpponent
	}
	if g.Outcome.Terminal() {
		return -1, g.Outcome, ErrGameOver
	}
	if !g.OpponentToMove() {
		return -1, g.Outcome, ErrNotAutomated
	}
	b := g.Board
	cell := m.ChooseMove(&b, g.Difficulty)
	out, err := g.apply(cell)
	return cell, out, err
}

// apply marks cell for g.Turn, evaluates, and updates the scoreboard.
func (g *Game) apply(cell int) (board.Outcome, error) {
	if cell < 0 || cell >= board.Size {
		return g.Outcome, ErrOutOfRange
	}
	if g.Board[cell] != board.Empty {
		return g.Outcome, ErrOccupied
	}

	g.Board[cell] = g.Turn
	g.History = append(g.History, cell)
	g.Outcome = board.Evaluate(g.Board)

	switch g.Outcome.Status {
	case board.StatusWin:
		if g.Outcome.Winner == board.X {
			g.Scores.X++
		} else {
			g.Scores.O++
		}
	case board.StatusTie:
		g.Scores.Ties++
	default:
		g.Turn = g.Turn.Opponent()
	}
	g.touch()
	return g.Outcome, nil
}

// State reports a coarse string form of the round's state.
func (g *Game) State() string {
	switch {
	case g.Outcome.WonBy(board.X):
		return "x_won"
	case g.Outcome.WonBy(board.O):
		return "o_won"
	case g.Outcome.Status == board.StatusTie:
		return "tie"
	}
	return "in_progress"
}

// Clone returns a deep copy, safe to read outside the store lock.
func (g *Game) Clone() *Game {
	c := *g
	c.History = append([]int(nil), g.History...)
	return &c
}

func (g *Game) touch() { g.UpdatedAt = time.Now().UTC() }
