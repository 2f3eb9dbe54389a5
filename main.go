package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tictactoe/apps/go-server/internal/board"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/config"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/httpserver"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/opponent"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/search"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/store"
	"github.com/robalobadob/tictactoe/apps/go-server/internal/tally"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	results, err := tally.Open(cfg.TallyDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open tally")
	}
	defer results.Close()

	searchOpts := []search.Option{search.WithMetrics()}
	if cfg.ParallelRoot {
		searchOpts = append(searchOpts, search.WithParallelRoot())
	}
	ai := opponent.New(board.O, opponent.WithSearchOptions(searchOpts...))

	mem := store.NewMemoryStore()
	go store.RunSweeper(context.Background(), mem, cfg.SessionTTL, cfg.SweepInterval)

	srv := httpserver.New(mem, results, ai, cfg)
	log.Info().Str("port", cfg.Port).Bool("parallelRoot", cfg.ParallelRoot).Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
