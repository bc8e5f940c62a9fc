package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/predicthub/internal/arbitrage"
	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/pipeline"
	"github.com/alanyoungcy/predicthub/internal/server"
	"github.com/alanyoungcy/predicthub/internal/server/handler"
	"github.com/alanyoungcy/predicthub/internal/server/ws"
	"github.com/alanyoungcy/predicthub/internal/service"
)

// services holds the service layer built over Dependencies.
type services struct {
	aggregator *service.Aggregator
	alerts     *service.AlertService
	watchlist  *service.WatchlistService
	history    *service.HistoryService
	embed      *service.EmbedService
	portfolio  *service.PortfolioService
}

func (a *App) buildServices(deps *Dependencies) *services {
	agg := service.NewAggregator(deps.Sources, service.AggregatorConfig{
		GroupThreshold: a.cfg.Matching.GroupThreshold,
		MinDifference:  a.cfg.Matching.ArbitrageMinDiff,
		Dedup:          a.cfg.Matching.DedupOpportunities,
		FetchTimeout:   a.cfg.Poller.FetchTimeout.Duration,
	}, service.AggregatorDeps{
		Snapshots: deps.Snapshots,
		Cache:     deps.MarketCache,
		Bus:       deps.SignalBus,
		Notifier:  deps.Notifier,
		Metrics:   deps.Metrics,
	}, a.logger)

	alerts := service.NewAlertService(deps.Alerts, agg, deps.SignalBus, deps.Notifier, deps.Metrics, a.logger)
	agg.OnRefresh(alerts.EvaluateHook())

	return &services{
		aggregator: agg,
		alerts:     alerts,
		watchlist:  service.NewWatchlistService(deps.Watchlist, agg),
		history:    service.NewHistoryService(deps.Histories, deps.Lookups, agg, deps.Snapshots, a.logger),
		embed:      service.NewEmbedService(deps.MarketCache, agg, deps.Lookups, a.logger),
		portfolio:  service.NewPortfolioService(deps.Positions),
	}
}

func (a *App) newOrchestrator(deps *Dependencies, svc *services) *pipeline.Orchestrator {
	poller := pipeline.NewPoller(svc.aggregator, deps.LockManager, a.cfg.Poller.LockTTL.Duration, a.logger)
	var archiver *pipeline.Archiver
	if deps.Archiver != nil {
		archiver = pipeline.NewArchiver(deps.Archiver, a.cfg.Archive.RetentionDays, a.logger)
	}
	return pipeline.NewOrchestrator(poller, archiver, a.cfg.Poller.Interval.Duration, a.cfg.Archive.Cron, a.logger)
}

// ServeMode runs the poller, the WebSocket hub and the HTTP API.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")
	svc := a.buildServices(deps)

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("ws hub: %w", err)
		}
		return nil
	})

	orchestrator := a.newOrchestrator(deps, svc)
	g.Go(func() error {
		return orchestrator.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, a.handlers(deps, svc), server.Deps{
		Limiter: deps.RateLimiter,
		Metrics: deps.Metrics,
		Hub:     hub,
	}, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

func (a *App) handlers(deps *Dependencies, svc *services) server.Handlers {
	h := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Status:    handler.NewStatusHandler(a.cfg.Mode, svc.aggregator),
		Markets:   handler.NewMarketHandler(svc.aggregator, a.logger),
		Groups:    handler.NewGroupHandler(svc.aggregator),
		Arb:       handler.NewArbHandler(svc.aggregator),
		History:   handler.NewHistoryHandler(svc.history, a.logger),
		Embed:     handler.NewEmbedHandler(svc.embed, a.logger),
		Alerts:    handler.NewAlertHandler(svc.alerts, a.logger),
		Watchlist: handler.NewWatchlistHandler(svc.watchlist, a.logger),
		Portfolio: handler.NewPortfolioHandler(svc.portfolio, a.logger),
		Refresh:   handler.NewRefreshHandler(svc.aggregator, a.logger),
	}
	if deps.BlobReader != nil {
		h.Archives = handler.NewArchiveHandler(deps.BlobReader, a.logger)
	}
	return h
}

// PollMode refreshes on the poller interval without serving HTTP. Alerts,
// notifications, snapshot persistence and archiving still run.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting poll mode")
	svc := a.buildServices(deps)
	return a.newOrchestrator(deps, svc).Run(ctx)
}

// onceSummary is the JSON document written by OnceMode.
type onceSummary struct {
	FetchedAt     time.Time               `json:"fetchedAt"`
	Platforms     []domain.PlatformStatus `json:"platforms"`
	Markets       int                     `json:"markets"`
	Groups        int                     `json:"groups"`
	CrossListed   int                     `json:"crossListed"`
	Opportunities []onceOpportunity       `json:"opportunities"`
}

type onceOpportunity struct {
	EventName       string  `json:"eventName"`
	PriceDifference float64 `json:"priceDifference"`
	Summary         string  `json:"summary"`
}

// OnceMode performs one refresh, writes a JSON summary to stdout and
// returns.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	svc := a.buildServices(deps)
	snap, err := svc.aggregator.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("once mode: %w", err)
	}

	out := onceSummary{
		FetchedAt:     snap.FetchedAt,
		Platforms:     snap.Statuses,
		Markets:       len(snap.Markets),
		Groups:        len(snap.Groups),
		CrossListed:   len(svc.aggregator.Groups(true)),
		Opportunities: make([]onceOpportunity, 0, len(snap.Opportunities)),
	}
	for _, opp := range snap.Opportunities {
		out.Opportunities = append(out.Opportunities, onceOpportunity{
			EventName:       opp.EventName,
			PriceDifference: opp.PriceDifference,
			Summary:         arbitrage.Format(opp),
		})
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("once mode: write summary: %w", err)
	}
	a.logger.InfoContext(ctx, "once mode complete",
		slog.Int("markets", out.Markets),
		slog.Int("opportunities", len(out.Opportunities)),
	)
	return nil
}
