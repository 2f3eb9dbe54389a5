// internal/board/evaluate.go
//
// Outcome evaluation and small board helpers.
// Responsibilities:
//   - Detect a completed line (first match in WinLines order wins).
//   - Detect a tie once every cell is filled and no line matched.
//   - Enumerate empty cells in ascending index order.
//   - Parse/format compact board strings ("XX.OO....") for tests and logs.

package board

import (
	"errors"
	"fmt"
	"strings"
)

// Evaluate reports whether the game on b has ended and who won.
// Lines are checked before fullness, so a full board with a line is a win.
// It has no precondition beyond b being a Board; malformed boards with several
// completed lines report the first one in WinLines order.
func Evaluate(b Board) Outcome {
	for _, line := range WinLines {
		m := b[line[0]]
		if m != Empty && m == b[line[1]] && m == b[line[2]] {
			return Outcome{Status: StatusWin, Winner: m, Line: line}
		}
	}
	if b.Full() {
		return Outcome{Status: StatusTie}
	}
	return Outcome{Status: StatusInProgress}
}

// Full reports whether no cell is empty.
func (b *Board) Full() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// Empties returns the empty cell indices in ascending order.
func (b *Board) Empties() []int {
	out := make([]int, 0, Size)
	for i, m := range b {
		if m == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Count returns how many cells hold m.
func (b *Board) Count(m Mark) int {
	n := 0
	for _, c := range b {
		if c == m {
			n++
		}
	}
	return n
}

// NextTurn infers whose move it is from the mark counts, assuming X started.
func (b *Board) NextTurn() Mark {
	if b.Count(X) > b.Count(O) {
		return O
	}
	return X
}

// String renders the board row by row, using '.' for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	for i, m := range b {
		if i > 0 && i%3 == 0 {
			sb.WriteByte('/')
		}
		if m == Empty {
			sb.WriteByte('.')
		} else {
			sb.WriteString(string(m))
		}
	}
	return sb.String()
}

var ErrBadBoard = errors.New("board must have exactly 9 cells of X, O or .")

// Parse reads a compact board string. 'X'/'x' and 'O'/'o' are marks,
// '.', '-' and '_' are empty cells; spaces, '|', '/' and newlines are ignored.
func Parse(s string) (Board, error) {
	var b Board
	n := 0
	for _, r := range s {
		var m Mark
		switch r {
		case ' ', '|', '/', '\n', '\t', '\r':
			continue
		case 'X', 'x':
			m = X
		case 'O', 'o':
			m = O
		case '.', '-', '_':
			m = Empty
		default:
			return Board{}, fmt.Errorf("%w: unexpected %q", ErrBadBoard, r)
		}
		if n >= Size {
			return Board{}, ErrBadBoard
		}
		b[n] = m
		n++
	}
	if n != Size {
		return Board{}, ErrBadBoard
	}
	return b, nil
}
