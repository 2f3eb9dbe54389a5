package opponent

import (
	"fmt"
	"strings"
)

// Difficulty controls how often the opponent ignores the searched move.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// RandomWeight is the probability of playing a uniformly random legal move
// instead of the searched one.
func (d Difficulty) RandomWeight() float64 {
	switch d {
	case Easy:
		return 0.70
	case Medium:
		return 0.30
	}
	return 0
}

func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// ParseDifficulty accepts "easy", "medium" or "hard" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}
