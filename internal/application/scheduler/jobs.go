package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher refreshes every user's portfolio.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// DailyRefreshJob re-prices all holdings and records the day's snapshots.
type DailyRefreshJob struct {
	Refresher Refresher
	// Timeout bounds a whole run. Zero means no limit.
	Timeout time.Duration
}

func (j *DailyRefreshJob) Name() string {
	return "daily_price_update"
}

func (j *DailyRefreshJob) Run(ctx context.Context) error {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	return j.Refresher.RefreshAll(ctx)
}

// Pruner evicts expired cache entries.
type Pruner interface {
	Prune() int
}

// CachePruneJob drops quotes that expired without being read again.
type CachePruneJob struct {
	Cache  Pruner
	Logger zerolog.Logger
}

func (j *CachePruneJob) Name() string {
	return "quote_cache_prune"
}

func (j *CachePruneJob) Run(context.Context) error {
	if n := j.Cache.Prune(); n > 0 {
		j.Logger.Debug().Int("removed", n).Msg("pruned expired quotes")
	}
	return nil
}
