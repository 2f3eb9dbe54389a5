package tally

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is one finished round.
type Result struct {
	GameID     string `json:"gameId"`
	Round      int    `json:"round"`
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty,omitempty"`
	Result     string `json:"result"` // x_won | o_won | tie
	Moves      int    `json:"moves"`
}

// Row is one line of the summary.
type Row struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty,omitempty"`
	Result     string `json:"result"`
	Count      int    `json:"count"`
}

type Store struct{ db *sql.DB }

// Open connects to dsn and applies migrations.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record stores a finished round. Recording the same game round twice is a no-op.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results(game_id, round, mode, difficulty, result, moves)
		VALUES(?,?,?,?,?,?)`,
		r.GameID, r.Round, r.Mode, r.Difficulty, r.Result, r.Moves,
	)
	return err
}

// Summary counts results grouped by mode, difficulty and result.
func (s *Store) Summary(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, difficulty, result, COUNT(1)
		FROM results
		GROUP BY mode, difficulty, result
		ORDER BY mode, difficulty, result`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Mode, &r.Difficulty, &r.Result, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Recent returns the latest finished rounds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, round, mode, difficulty, result, moves
		FROM results
		ORDER BY id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.GameID, &r.Round, &r.Mode, &r.Difficulty, &r.Result, &r.Moves); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
