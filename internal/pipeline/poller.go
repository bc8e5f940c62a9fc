package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// pollLockKey names the lock that keeps replicas from refreshing at once.
const pollLockKey = "poller"

// Refresher is the aggregation step run on each tick.
type Refresher interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
}

// Poller refreshes the aggregation snapshot on an interval. With a
// LockManager only one replica refreshes per interval.
type Poller struct {
	refresher Refresher
	locks     domain.LockManager
	lockTTL   time.Duration
	logger    *slog.Logger
}

// NewPoller creates a Poller. locks may be nil for single-instance
// deployments.
func NewPoller(refresher Refresher, locks domain.LockManager, lockTTL time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		refresher: refresher,
		locks:     locks,
		lockTTL:   lockTTL,
		logger:    logger.With(slog.String("component", "poller")),
	}
}

// Run performs one refresh. It returns nil without refreshing when another
// replica holds the lock.
func (p *Poller) Run(ctx context.Context) error {
	if p.locks != nil {
		unlock, err := p.locks.Acquire(ctx, pollLockKey, p.lockTTL)
		if errors.Is(err, domain.ErrLockHeld) {
			p.logger.DebugContext(ctx, "refresh skipped, lock held elsewhere")
			return nil
		}
		if err != nil {
			return fmt.Errorf("poller: acquire lock: %w", err)
		}
		defer unlock()
	}

	snap, err := p.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("poller: refresh: %w", err)
	}

	failed := 0
	for _, st := range snap.Statuses {
		if st.Error != "" {
			failed++
		}
	}
	p.logger.InfoContext(ctx, "refresh complete",
		slog.Int("markets", len(snap.Markets)),
		slog.Int("opportunities", len(snap.Opportunities)),
		slog.Int("failed_platforms", failed),
	)
	return nil
}

// RunLoop refreshes immediately and then on every tick until ctx is done.
func (p *Poller) RunLoop(ctx context.Context, interval time.Duration) error {
	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("refresh failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Run(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
