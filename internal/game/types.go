// internal/game/types.go
//
// Core type definitions for a tic-tac-toe session.
// Defines:
//   - Mode: human vs human, or human vs the automated opponent.
//   - Scores: per-session scoreboard across rounds.
//   - Game: state for a single session (board, turn, outcome, history).
//   - Mover: anything that can pick a cell for the automated side.

package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/opponent"
)

// Mode selects who controls O.
type Mode string

const (
	ModePvP Mode = "pvp" // both marks are human
	ModeAI  Mode = "ai"  // X is human, O is the automated opponent
)

// ParseMode accepts "pvp" or "ai" in any case; an empty string means ModeAI.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAI, nil
	case ModePvP, ModeAI:
		return m, nil
	}
	return "", fmt.Errorf("%w %q", ErrBadMode, s)
}

var (
	ErrGameOver     = errors.New("game finished")
	ErrOutOfRange   = errors.New("cell out of range")
	ErrOccupied     = errors.New("cell already taken")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrNoOpponent   = errors.New("game has no automated opponent")
	ErrNotAutomated = errors.New("automated opponent is not to move")
	ErrBadMode      = errors.New("unknown mode")
	ErrBadDiff      = errors.New("unknown difficulty")
)

func errInvalidDifficulty(d opponent.Difficulty) error {
	return fmt.Errorf("%w %q", ErrBadDiff, d)
}

// Scores counts finished rounds within a session.
type Scores struct {
	X    int `json:"x"`
	O    int `json:"o"`
	Ties int `json:"ties"`
}

// Game holds the state of a single session.
// The board is owned here; the opponent only ever sees a copy.
type Game struct {
	ID         string              // Unique game identifier (UUID).
	Mode       Mode                // pvp or ai.
	Difficulty opponent.Difficulty // Active difficulty (ai mode only).
	AIMark     board.Mark          // Mark played by the opponent; Empty in pvp.
	Board      board.Board         // Current round's board.
	Turn       board.Mark          // Mark to move next.
	Outcome    board.Outcome       // Result of the last evaluation.
	History    []int               // Cells played this round, in order.
	Scores     Scores              // Results of finished rounds.
	Round      int                 // 1-based round counter.
	UpdatedAt  time.Time
}

// Mover picks a cell for the automated side. *opponent.Opponent implements it.
type Mover interface {
	ChooseMove(b *board.Board, d opponent.Difficulty) int
}
