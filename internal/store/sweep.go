// internal/store/sweep.go
//
// Eviction of idle sessions.
// A session token expires SessionTTL after the game is created, so a game
// idle for longer than that can no longer be played and is safe to drop.

package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweep deletes every game last updated before cutoff and returns how many went.
func Sweep(ctx context.Context, st Store, cutoff time.Time) (int, error) {
	ids, err := st.Idle(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := st.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// RunSweeper calls Sweep every interval, dropping games idle for longer than ttl,
// until ctx is done.
func RunSweeper(ctx context.Context, st Store, ttl, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := Sweep(ctx, st, now.Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("evicted", n).Msg("idle sessions dropped")
			}
		}
	}
}
