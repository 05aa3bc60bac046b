package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/api"
)

const DefaultWatchInterval = 5 * time.Second

// Watch fetches the tournament state right away and then on every interval tick, handing each
// successful fetch to onUpdate. Fetch errors are logged and skipped. It returns nil once a
// completed state was delivered, or ctx.Err() when ctx is cancelled first.
func (c *Client) Watch(ctx context.Context, tournamentID int64, interval time.Duration, onUpdate func(*api.TournamentStatus)) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetStatus(ctx, tournamentID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Debug("Tournament refresh failed", "tournament_id", tournamentID, "error", err)
		default:
			onUpdate(status)
			if status.IsCompleted() {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
