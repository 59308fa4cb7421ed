package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CartPurger deletes cart snapshots not touched since cutoff.
type CartPurger interface {
	PurgeCartSnapshots(ctx context.Context, cutoff time.Time) (int64, error)
}

// CartSweeper periodically removes abandoned session carts.
type CartSweeper struct {
	store    CartPurger
	interval time.Duration
	maxAge   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewCartSweeper(store CartPurger, interval, maxAge time.Duration, logger *zap.Logger) *CartSweeper {
	return &CartSweeper{store: store, interval: interval, maxAge: maxAge, logger: logger, now: time.Now}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *CartSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep purges carts older than maxAge.
func (s *CartSweeper) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.maxAge)
	n, err := s.store.PurgeCartSnapshots(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("Failed to purge abandoned carts", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.logger.Info("Purged abandoned carts", zap.Int64("carts", n), zap.Time("cutoff", cutoff))
	}
}
