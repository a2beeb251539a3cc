package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/citas/internal/observability/metrics"
)

// Sweeper is implemented by cache backends that keep expired entries
// around until they are explicitly dropped
type Sweeper interface {
	Sweep() int
}

// CacheSweeper periodically evicts expired entries from the in-process cache
type CacheSweeper struct {
	cache    Sweeper
	logger   *slog.Logger
	interval time.Duration
}

// NewCacheSweeper creates a new cache sweeper
func NewCacheSweeper(cache Sweeper, logger *slog.Logger, interval time.Duration) *CacheSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheSweeper{
		cache:    cache,
		logger:   logger.With(slog.String("component", "cache_sweeper")),
		interval: interval,
	}
}

// Start runs the sweep loop until ctx is cancelled
func (w *CacheSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cache sweeper started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cache sweeper stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CacheSweeper) sweep() int {
	removed := w.cache.Sweep()
	metrics.ObserveCacheSweep(removed)
	if removed > 0 {
		w.logger.Debug("expired cache entries removed", slog.Int("removed", removed))
	}
	return removed
}
