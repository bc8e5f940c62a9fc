// Package pipeline runs the background work of the service: periodic
// aggregation refreshes and cold-storage archival of price snapshots.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator runs the poller and, when configured, the archiver.
type Orchestrator struct {
	poller       *Poller
	archiver     *Archiver
	pollInterval time.Duration
	archiveCron  string
	logger       *slog.Logger
}

// NewOrchestrator creates an Orchestrator. archiver may be nil.
func NewOrchestrator(
	poller *Poller,
	archiver *Archiver,
	pollInterval time.Duration,
	archiveCron string,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		poller:       poller,
		archiver:     archiver,
		pollInterval: pollInterval,
		archiveCron:  archiveCron,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled or a loop fails.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline orchestrator starting",
		slog.Duration("poll_interval", o.pollInterval),
		slog.Bool("archiver", o.archiver != nil),
		slog.String("archive_cron", o.archiveCron),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := o.poller.RunLoop(ctx, o.pollInterval)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("poller: %w", err)
	})

	if o.archiver != nil {
		g.Go(func() error {
			err := o.archiver.RunCron(ctx, o.archiveCron)
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("archiver: %w", err)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("pipeline orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}
	o.logger.Info("pipeline orchestrator stopped cleanly")
	return nil
}
