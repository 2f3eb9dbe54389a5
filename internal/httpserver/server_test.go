package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/config"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/opponent"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/store"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/tally"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tl, err := tally.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tl.Close() })

	cfg := config.Config{
		ClientOrigin: "http://localhost:5173",
		JWTSecret:    "test_secret",
		SessionTTL:   time.Hour,
	}
	return New(store.NewMemoryStore(), tl, opponent.New(board.O, opponent.WithSeed(1)), cfg)
}

func do(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newGame(t *testing.T, s *Server, body string) newGameRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/game/new", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[newGameRes](t, rec)
}

func move(t *testing.T, s *Server, g newGameRes, cell int) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, s, http.MethodPost, "/game/"+g.GameID+"/move", `{"cell":`+itoa(cell)+`}`, g.Token)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "not_found")
}

func TestNewGame(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/game/new", `{"mode":"pvp"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[newGameRes](t, rec)
	require.NotEmpty(t, g.GameID)
	require.NotEmpty(t, g.Token)
	require.Equal(t, "in_progress", g.State)
	require.Equal(t, board.X, g.Turn)
	require.Equal(t, 1, g.Round)
	require.Empty(t, g.Difficulty)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, g.Token, cookie.Value)
	require.True(t, cookie.HttpOnly)

	ai := newGame(t, s, "")
	require.Equal(t, "ai", string(ai.Mode))
	require.Equal(t, "medium", ai.Difficulty)

	hard := newGame(t, s, `{"mode":"ai","difficulty":"HARD"}`)
	require.Equal(t, "hard", hard.Difficulty)
}

func TestNewGameRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{`{"mode":"solo"}`, `{"mode":"ai","difficulty":"insane"}`, `{`} {
		rec := do(t, s, http.MethodPost, "/game/new", body, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestGetGame(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"pvp"}`)

	rec := do(t, s, http.MethodGet, "/game/"+g.GameID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, g.GameID, decode[gameView](t, rec).GameID)

	rec = do(t, s, http.MethodGet, "/game/missing", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMoveRequiresSession(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"pvp"}`)
	other := newGame(t, s, `{"mode":"pvp"}`)

	rec := do(t, s, http.MethodPost, "/game/"+g.GameID+"/move", `{"cell":0}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/game/"+g.GameID+"/move", `{"cell":0}`, other.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/game/"+g.GameID+"/move", `{"cell":0}`, "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The session cookie works as well as the bearer header.
	req := httptest.NewRequest(http.MethodPost, "/game/"+g.GameID+"/move", strings.NewReader(`{"cell":0}`))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: g.Token})
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestExpiredSessionIsRejected(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"pvp"}`)

	s.cfg.SessionTTL = -time.Minute
	stale, _, err := s.signSession(g.GameID)
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/game/"+g.GameID+"/move", `{"cell":0}`, stale)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPvPMovesAndErrors(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"pvp"}`)

	rec := move(t, s, g, 4)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[gameView](t, rec)
	require.Equal(t, board.X, v.Board[4])
	require.Equal(t, board.O, v.Turn)
	require.Nil(t, v.AICell)

	require.Equal(t, http.StatusBadRequest, move(t, s, g, 4).Code, "occupied")
	require.Equal(t, http.StatusBadRequest, move(t, s, g, 9).Code, "out of range")
	require.Equal(t, http.StatusBadRequest, move(t, s, g, -1).Code, "out of range")

	rec = do(t, s, http.MethodPost, "/game/"+g.GameID+"/move", `{}`, g.Token)
	require.Equal(t, http.StatusBadRequest, rec.Code, "missing cell")

	rec = do(t, s, http.MethodPost, "/game/"+g.GameID+"/difficulty", `{"difficulty":"easy"}`, g.Token)
	require.Equal(t, http.StatusBadRequest, rec.Code, "pvp has no opponent")
}

func TestPvPRoundIsTalliedAndReset(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"pvp"}`)

	// X: 0 1 2, O: 3 4
	for _, c := range []int{0, 3, 1, 4} {
		require.Equal(t, http.StatusOK, move(t, s, g, c).Code)
	}
	rec := move(t, s, g, 2)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[gameView](t, rec)
	require.Equal(t, "x_won", v.State)
	require.Equal(t, board.X, v.Winner)
	require.Equal(t, []int{0, 1, 2}, v.Line)
	require.Equal(t, 1, v.Scores.X)

	require.Equal(t, http.StatusConflict, move(t, s, g, 8).Code, "round is over")

	rec = do(t, s, http.MethodGet, "/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[statsRes](t, rec)
	require.Equal(t, []tally.Row{{Mode: "pvp", Difficulty: "", Result: "x_won", Count: 1}}, st.Summary)
	require.Len(t, st.Recent, 1)
	require.Equal(t, 5, st.Recent[0].Moves)

	rec = do(t, s, http.MethodPost, "/game/"+g.GameID+"/reset", "", g.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[gameView](t, rec)
	require.Equal(t, 2, v.Round)
	require.Equal(t, "in_progress", v.State)
	require.Equal(t, board.Board{}, v.Board)
	require.Equal(t, 1, v.Scores.X, "scores survive a reset")
}

func TestAIReplies(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"ai","difficulty":"hard"}`)

	rec := move(t, s, g, 0)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decode[gameView](t, rec)
	require.NotNil(t, v.AICell)
	require.Equal(t, 4, *v.AICell, "the center is the only reply to a corner that does not lose")
	require.Equal(t, board.O, v.Board[4])
	require.Equal(t, []int{0, 4}, v.History)
	require.Equal(t, board.X, v.Turn)
}

func TestHardOpponentNeverLosesOverHTTP(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"ai","difficulty":"hard"}`)

	// The human always plays the lowest free cell.
	for round := 0; round < 3; round++ {
		v := decode[gameView](t, do(t, s, http.MethodGet, "/game/"+g.GameID, "", ""))
		for v.State == "in_progress" {
			cell := 0
			for v.Board[cell] != board.Empty {
				cell++
			}
			rec := move(t, s, g, cell)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			v = decode[gameView](t, rec)
		}
		require.NotEqual(t, "x_won", v.State)
		require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/game/"+g.GameID+"/reset", "", g.Token).Code)
	}
}

func TestSetDifficulty(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, `{"mode":"ai"}`)

	rec := do(t, s, http.MethodPost, "/game/"+g.GameID+"/difficulty", `{"difficulty":"Easy"}`, g.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "easy", decode[gameView](t, rec).Difficulty)

	rec = do(t, s, http.MethodPost, "/game/"+g.GameID+"/difficulty", `{"difficulty":"expert"}`, g.Token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEmpty(t *testing.T) {
	s := New(store.NewMemoryStore(), nil, opponent.New(board.O), config.Config{JWTSecret: "x", SessionTTL: time.Hour})
	rec := do(t, s, http.MethodGet, "/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"summary":[],"recent":[]}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/game/new", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestWatchStreamsState(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	g := newGame(t, s, `{"mode":"pvp"}`)
	conn := dialWatch(t, ts, g.GameID)

	first := readState(t, conn)
	require.Equal(t, g.GameID, first.GameID)
	require.Empty(t, first.History)

	require.Equal(t, http.StatusOK, move(t, s, g, 8).Code)
	next := readState(t, conn)
	require.Equal(t, board.X, next.Board[8])
	require.Equal(t, []int{8}, next.History)
}

func TestWatchUnknownGame(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/game/missing/ws", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
