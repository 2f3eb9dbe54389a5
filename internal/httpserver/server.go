// internal/httpserver/server.go
//
// HTTP server wiring for the tic-tac-toe backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request logs).
//   - Public endpoints: "/", "/health", "/stats", "/analyze" (see routes_analyze.go).
//   - Game endpoints: mounted under /game (see routes_game.go).
//   - Live board stream: GET /game/{id}/ws, outside the handler timeout.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the session cookie works).
//   - Mutating game routes require the game's session token (see session.go).

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/config"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/live"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/opponent"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/store"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/tally"
)

// Server bundles router, session store, tally, opponent and live hub.
type Server struct {
	r        *chi.Mux
	store    store.Store
	tally    *tally.Store
	ai       *opponent.Opponent
	hub      *live.Hub
	cfg      config.Config
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
// tl may be nil, in which case finished rounds are not tallied.
func New(st store.Store, tl *tally.Store, ai *opponent.Opponent, cfg config.Config) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		store: st,
		tally: tl,
		ai:    ai,
		hub:   live.NewHub(),
		cfg:   cfg,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)   // one zerolog line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS

	// Websocket streams live as long as the client stays connected.
	s.r.Get("/game/{id}/ws", s.handleWatch)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"tictactoe-go","endpoints":["/health","/stats","/analyze","POST /game/new","GET /game/{id}","POST /game/{id}/move","POST /game/{id}/reset","POST /game/{id}/difficulty","GET /game/{id}/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/stats", s.handleStats)
		r.Get("/analyze", s.handleAnalyze)

		s.mountGame(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs method, path, status and latency for every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Debug().
				Str("reqId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// checkOrigin accepts same-host requests, non-browser clients, and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.ClientOrigin || origin == "http://"+r.Host || origin == "https://"+r.Host
}

// ------------------------------- stats -------------------------------------

type statsRes struct {
	Summary []tally.Row    `json:"summary"`
	Recent  []tally.Result `json:"recent"`
}

// handleStats reports the tally of finished rounds since the process started.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res := statsRes{Summary: []tally.Row{}, Recent: []tally.Result{}}
	if s.tally != nil {
		summary, err := s.tally.Summary(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("tally summary")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		recent, err := s.tally.Recent(r.Context(), 20)
		if err != nil {
			log.Error().Err(err).Msg("tally recent")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		res.Summary, res.Recent = summary, recent
	}
	writeJSON(w, http.StatusOK, res)
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
