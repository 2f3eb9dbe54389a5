// internal/board/types.go
//
// Core type definitions for the 3x3 board.
// Defines:
//   - Mark: content of a single cell (empty, X or O).
//   - Board: nine cells in row-major order.
//   - WinLine: a triple of cell indices that wins when filled by one mark.
//   - Outcome: result of evaluating a board (in progress, win, tie).

package board

// Size is the number of cells on the board.
const Size = 9

// Mark represents the content of a single cell.
// X always moves first; O moves second.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	}
	return Empty
}

// Valid reports whether m is one of the three permitted values.
func (m Mark) Valid() bool {
	return m == Empty || m == X || m == O
}

// Board holds the cells indexed 0..8:
//
//	0 | 1 | 2
//	3 | 4 | 5
//	6 | 7 | 8
type Board [Size]Mark

// WinLine is a row, column or diagonal.
type WinLine [3]int

// WinLines is the fixed table of the 8 winning lines, in evaluation order.
var WinLines = [8]WinLine{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Status is the coarse state of a board.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWin        Status = "win"
	StatusTie        Status = "tie"
)

// Outcome is the result of Evaluate.
// Winner and Line are only meaningful when Status is StatusWin.
type Outcome struct {
	Status Status  `json:"status"`
	Winner Mark    `json:"winner,omitempty"`
	Line   WinLine `json:"line"`
}

// Terminal reports whether the game has ended.
func (o Outcome) Terminal() bool {
	return o.Status != StatusInProgress
}

// WonBy reports whether the outcome is a win for m.
func (o Outcome) WonBy(m Mark) bool {
	return o.Status == StatusWin && o.Winner == m
}
