package tally

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndSummary(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	rows, err := s.Summary(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)

	require.NoError(t, s.Record(ctx, Result{GameID: "a", Round: 1, Mode: "ai", Difficulty: "hard", Result: "tie", Moves: 9}))
	require.NoError(t, s.Record(ctx, Result{GameID: "a", Round: 2, Mode: "ai", Difficulty: "hard", Result: "tie", Moves: 9}))
	require.NoError(t, s.Record(ctx, Result{GameID: "b", Round: 1, Mode: "ai", Difficulty: "easy", Result: "x_won", Moves: 5}))
	require.NoError(t, s.Record(ctx, Result{GameID: "c", Round: 1, Mode: "pvp", Result: "o_won", Moves: 6}))

	rows, err = s.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, []Row{
		{Mode: "ai", Difficulty: "easy", Result: "x_won", Count: 1},
		{Mode: "ai", Difficulty: "hard", Result: "tie", Count: 2},
		{Mode: "pvp", Difficulty: "", Result: "o_won", Count: 1},
	}, rows)
}

func TestRecordIsIdempotentPerRound(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	r := Result{GameID: "a", Round: 1, Mode: "pvp", Result: "tie", Moves: 9}
	require.NoError(t, s.Record(ctx, r))
	require.NoError(t, s.Record(ctx, r))

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []Result{r}, recent)
}

func TestRecentOrder(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Record(ctx, Result{GameID: "g", Round: i, Mode: "pvp", Result: "tie", Moves: 9}))
	}
	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, 3, recent[0].Round)
	require.Equal(t, 2, recent[1].Round)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openMemory(t)
	require.NoError(t, migrate(s.db))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	require.Equal(t, 1, n)
}
