package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/pinterval/internal/pinboard"
	"github.com/five82/pinterval/internal/state"
)

const defaultPollInterval = 5 * time.Minute

// StartPoller launches a background goroutine that refreshes the board list
// and login state at a fixed cadence. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, fetcher pinboard.Fetcher, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger = discardIfNil(logger).With("component", "poller")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(ctx, store, fetcher, logger)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, fetcher pinboard.Fetcher, logger *slog.Logger) {
	boards, err := fetcher.FetchBoards(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		store.Update(nil, err)
		if errors.Is(err, pinboard.ErrNotLoggedIn) {
			logger.Info("board poll: not logged in")
			return
		}
		logger.Warn("board poll failed", "error", err, "failures", store.Snapshot().ConsecutiveFailures)
		return
	}
	store.Update(boards, nil)
	logger.Debug("board poll ok", "boards", len(boards))
}
