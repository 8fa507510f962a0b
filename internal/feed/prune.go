package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// ExpiryStore drops NOTAMs whose validity has ended.
type ExpiryStore interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneExpired deletes expired NOTAMs from store every interval until ctx
// is cancelled. A failed pass is logged and retried on the next tick. A nil
// clock uses the real clock.
func PruneExpired(ctx context.Context, store ExpiryStore, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			n, err := store.DeleteExpired(ctx, clock.Now().UTC())
			if err != nil {
				logger.Error("prune expired notams failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned expired notams", "count", n)
			}
		}
	}
}
