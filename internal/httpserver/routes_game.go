// internal/httpserver/routes_game.go
//
// HTTP routes for game sessions.
//   - POST /game/new             → create a session (pvp or ai) and issue its token
//   - GET  /game/{id}            → current state (public)
//   - POST /game/{id}/move       → human move; in ai mode the opponent answers
//   - POST /game/{id}/reset      → next round, scores kept
//   - POST /game/{id}/difficulty → change the opponent's difficulty
//   - GET  /game/{id}/ws         → live state stream
//
// The opponent always works on a copy of the session board while the game's
// store lock is held. The optional think delay runs before that, outside the lock.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/game"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/live"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/opponent"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/store"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/tally"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetGame)
		r.With(s.requireSession).Post("/move", s.handleMove)
		r.With(s.requireSession).Post("/reset", s.handleReset)
		r.With(s.requireSession).Post("/difficulty", s.handleDifficulty)
	})
}

// gameView is the JSON shape of a session.
type gameView struct {
	GameID     string      `json:"gameId"`
	Mode       game.Mode   `json:"mode"`
	Difficulty string      `json:"difficulty,omitempty"`
	Board      board.Board `json:"board"`
	Turn       board.Mark  `json:"turn"`
	State      string      `json:"state"` // in_progress | x_won | o_won | tie
	Winner     board.Mark  `json:"winner,omitempty"`
	Line       []int       `json:"line,omitempty"`
	History    []int       `json:"history"`
	Scores     game.Scores `json:"scores"`
	Round      int         `json:"round"`
	AICell     *int        `json:"aiCell,omitempty"`
}

func viewOf(g *game.Game) gameView {
	v := gameView{
		GameID:     g.ID,
		Mode:       g.Mode,
		Difficulty: string(g.Difficulty),
		Board:      g.Board,
		Turn:       g.Turn,
		State:      g.State(),
		History:    append([]int{}, g.History...),
		Scores:     g.Scores,
		Round:      g.Round,
	}
	if g.Outcome.Status == board.StatusWin {
		v.Winner = g.Outcome.Winner
		v.Line = g.Outcome.Line[:]
	}
	return v
}

// -----------------------------------------------------------------------------
// /game/new

type newGameReq struct {
	Mode       string `json:"mode"`       // "pvp" | "ai" (default ai)
	Difficulty string `json:"difficulty"` // "easy" | "medium" | "hard" (ai only)
}

type newGameRes struct {
	gameView
	Token string `json:"token"`
}

// handleNewGame creates a session and returns it with its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}

	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var d opponent.Difficulty
	if mode == game.ModeAI && req.Difficulty != "" {
		if d, err = opponent.ParseDifficulty(req.Difficulty); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	g, err := game.New(mode, d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	tok, exp, err := s.signSession(g.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign session")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)

	log.Info().Str("gameId", g.ID).Str("mode", string(g.Mode)).Str("difficulty", string(g.Difficulty)).Msg("game created")
	writeJSON(w, http.StatusOK, newGameRes{gameView: viewOf(g), Token: tok})
}

// -----------------------------------------------------------------------------
// /game/{id}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g))
}

// -----------------------------------------------------------------------------
// /game/{id}/move

type moveReq struct {
	Cell *int `json:"cell"`
}

// handleMove applies the human move and, in ai mode, the opponent's answer.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	id := chi.URLParam(r, "id")

	var snap *game.Game
	err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		if _, err := g.Play(*req.Cell); err != nil {
			return err
		}
		snap = g.Clone()
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.afterMove(r.Context(), snap)

	view := viewOf(snap)
	if snap.OpponentToMove() {
		cell, next, err := s.opponentTurn(r.Context(), id)
		switch {
		case err == nil:
			snap = next
			view = viewOf(snap)
			view.AICell = &cell
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, game.ErrNotAutomated), errors.Is(err, game.ErrGameOver):
			// Client went away, or another request already moved; report what we have.
			log.Warn().Err(err).Str("gameId", id).Msg("opponent move skipped")
		default:
			s.writeGameError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, view)
}

// opponentTurn waits the think delay, then plays the opponent's move.
func (s *Server) opponentTurn(ctx context.Context, id string) (int, *game.Game, error) {
	if err := s.think(ctx); err != nil {
		return -1, nil, err
	}
	var (
		cell int
		snap *game.Game
	)
	err := s.store.Update(ctx, id, func(g *game.Game) error {
		c, _, err := g.PlayOpponent(moverFunc(s.chooseLogged))
		if err != nil {
			return err
		}
		cell, snap = c, g.Clone()
		return nil
	})
	if err != nil {
		return -1, nil, err
	}
	s.afterMove(ctx, snap)
	return cell, snap, nil
}

// think pauses before the opponent moves so the UI can show the human's move first.
func (s *Server) think(ctx context.Context) error {
	if s.cfg.ThinkDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.cfg.ThinkDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// moverFunc adapts a function to game.Mover.
type moverFunc func(b *board.Board, d opponent.Difficulty) int

func (f moverFunc) ChooseMove(b *board.Board, d opponent.Difficulty) int { return f(b, d) }

// chooseLogged asks the opponent for a move and logs how it was reached.
func (s *Server) chooseLogged(b *board.Board, d opponent.Difficulty) int {
	dec := s.ai.Decide(b, d)
	log.Debug().
		Str("board", b.String()).
		Str("difficulty", string(d)).
		Int("cell", dec.Cell).
		Bool("random", dec.Random).
		Int64("nodes", dec.Metrics.Nodes).
		Int64("prunes", dec.Metrics.Prunes).
		Dur("took", dec.Metrics.Duration).
		Msg("opponent move")
	return dec.Cell
}

// afterMove publishes the new state and tallies finished rounds (best effort).
func (s *Server) afterMove(ctx context.Context, g *game.Game) {
	s.hub.Publish(g.ID, "state", viewOf(g))
	if !g.Outcome.Terminal() || s.tally == nil {
		return
	}
	err := s.tally.Record(ctx, tally.Result{
		GameID:     g.ID,
		Round:      g.Round,
		Mode:       string(g.Mode),
		Difficulty: string(g.Difficulty),
		Result:     g.State(),
		Moves:      len(g.History),
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("record result")
	}
	log.Info().Str("gameId", g.ID).Int("round", g.Round).Str("result", g.State()).Msg("round finished")
}

// -----------------------------------------------------------------------------
// /game/{id}/reset and /game/{id}/difficulty

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var snap *game.Game
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(g *game.Game) error {
		g.Reset()
		snap = g.Clone()
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.hub.Publish(snap.ID, "state", viewOf(snap))
	writeJSON(w, http.StatusOK, viewOf(snap))
}

type difficultyReq struct {
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, err := opponent.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var snap *game.Game
	err = s.store.Update(r.Context(), chi.URLParam(r, "id"), func(g *game.Game) error {
		if err := g.SetDifficulty(d); err != nil {
			return err
		}
		snap = g.Clone()
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.hub.Publish(snap.ID, "state", viewOf(snap))
	writeJSON(w, http.StatusOK, viewOf(snap))
}

// -----------------------------------------------------------------------------
// /game/{id}/ws

// handleWatch streams state updates for one game over a websocket.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	c := s.hub.Subscribe(g.ID)
	s.hub.Send(c, "state", viewOf(g))
	if err := live.Serve(conn, c); err != nil {
		log.Debug().Err(err).Str("gameId", g.ID).Msg("websocket closed")
	}
}

// writeGameError maps domain errors to HTTP status codes.
func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrOutOfRange), errors.Is(err, game.ErrOccupied),
		errors.Is(err, game.ErrBadDiff), errors.Is(err, game.ErrBadMode), errors.Is(err, game.ErrNoOpponent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrNotAutomated):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("game request")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
