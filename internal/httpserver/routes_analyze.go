// internal/httpserver/routes_analyze.go
//
// Position analysis for debugging the opponent.
//   - GET /analyze?board=XX.OO....&mark=O → every candidate's score, the chosen
//     cell and the search counters.
//
// mark defaults to the side to move, inferred from the mark counts.
// The search always runs at full strength; difficulty does not apply here.

package httpserver

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/game"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/search"
)

type analyzeRes struct {
	Board  string             `json:"board"`
	Mark   board.Mark         `json:"mark"`
	Best   int                `json:"best"`
	Scores []search.MoveScore `json:"scores"`
	Nodes  int64              `json:"nodes"`
	Prunes int64              `json:"prunes"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b, err := board.Parse(q.Get("board"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mark := b.NextTurn()
	if m := q.Get("mark"); m != "" {
		mark = board.Mark(strings.ToUpper(strings.TrimSpace(m)))
		if !mark.Valid() || mark == board.Empty {
			writeError(w, http.StatusBadRequest, "mark must be X or O")
			return
		}
	}
	if board.Evaluate(b).Terminal() {
		writeError(w, http.StatusConflict, game.ErrGameOver.Error())
		return
	}

	sr := search.New(mark, search.WithMetrics())
	scores := sr.RootScores(&b)
	best, bestScore := -1, search.NegInf
	for _, ms := range scores {
		if ms.Score > bestScore {
			best, bestScore = ms.Cell, ms.Score
		}
	}
	m := sr.Metrics()
	log.Debug().Str("board", b.String()).Str("mark", string(mark)).Int("best", best).Int64("nodes", m.Nodes).Msg("analyze")

	writeJSON(w, http.StatusOK, analyzeRes{
		Board:  b.String(),
		Mark:   mark,
		Best:   best,
		Scores: scores,
		Nodes:  m.Nodes,
		Prunes: m.Prunes,
	})
}
