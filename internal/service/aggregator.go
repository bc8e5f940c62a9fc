// Package service holds the application logic behind the HTTP API and the
// background poller: aggregation, alerts, watchlist, history, embed lookups
// and portfolios.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/predicthub/internal/arbitrage"
	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/matching"
	"github.com/alanyoungcy/predicthub/internal/metrics"
	"github.com/alanyoungcy/predicthub/internal/notify"
)

// AggregatorConfig tunes grouping and arbitrage detection.
type AggregatorConfig struct {
	GroupThreshold float64
	MinDifference  float64
	Dedup          bool
	// FetchTimeout bounds each platform fetch; zero means no extra bound.
	FetchTimeout time.Duration
}

// RefreshHook runs after every successful refresh with the new snapshot.
type RefreshHook func(ctx context.Context, snap *domain.Snapshot)

// Aggregator fetches every platform concurrently and publishes immutable
// snapshots of markets, event groups and arbitrage opportunities.
type Aggregator struct {
	sources   []domain.MarketSource
	detector  *arbitrage.Detector
	cfg       AggregatorConfig
	snapshots domain.PriceSnapshotStore
	cache     domain.MarketCache
	bus       domain.SignalBus
	notifier  *notify.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	refreshMu sync.Mutex
	current   atomic.Pointer[domain.Snapshot]
	seenArbs  map[string]bool

	hooksMu sync.RWMutex
	hooks   []RefreshHook
}

// AggregatorDeps carries the optional collaborators of an Aggregator. Any
// nil field disables the corresponding side effect.
type AggregatorDeps struct {
	Snapshots domain.PriceSnapshotStore
	Cache     domain.MarketCache
	Bus       domain.SignalBus
	Notifier  *notify.Notifier
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// NewAggregator creates an Aggregator over sources, which are merged in the
// given order.
func NewAggregator(sources []domain.MarketSource, cfg AggregatorConfig, deps AggregatorDeps, logger *slog.Logger) *Aggregator {
	if cfg.GroupThreshold <= 0 {
		cfg.GroupThreshold = matching.DefaultGroupThreshold
	}
	// Zero is a valid gap and reports every cross-platform spread.
	if cfg.MinDifference < 0 {
		cfg.MinDifference = arbitrage.DefaultMinDifference
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	a := &Aggregator{
		sources:   sources,
		detector:  arbitrage.NewDetector(cfg.MinDifference, arbitrage.WithDedup(cfg.Dedup), arbitrage.WithClock(now)),
		cfg:       cfg,
		snapshots: deps.Snapshots,
		cache:     deps.Cache,
		bus:       deps.Bus,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    logger.With(slog.String("component", "aggregator")),
		now:       now,
		seenArbs:  make(map[string]bool),
	}
	a.current.Store(&domain.Snapshot{})
	return a
}

// OnRefresh registers a hook called after each refresh.
func (a *Aggregator) OnRefresh(h RefreshHook) {
	a.hooksMu.Lock()
	a.hooks = append(a.hooks, h)
	a.hooksMu.Unlock()
}

type fetchResult struct {
	markets []domain.UnifiedMarket
	status  domain.PlatformStatus
}

// Refresh fetches all platforms and replaces the current snapshot. A
// failing platform contributes an error status and no markets; Refresh
// itself only fails when ctx is done.
func (a *Aggregator) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	start := a.now()
	results := make([]fetchResult, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetch(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregator: refresh: %w", err)
	}

	var markets []domain.UnifiedMarket
	statuses := make([]domain.PlatformStatus, 0, len(results))
	for _, r := range results {
		markets = append(markets, r.markets...)
		statuses = append(statuses, r.status)
	}
	if markets == nil {
		markets = []domain.UnifiedMarket{}
	}

	snap := &domain.Snapshot{
		Markets:       markets,
		Statuses:      statuses,
		Groups:        matching.GroupMarketsByEvent(markets, a.cfg.GroupThreshold),
		Opportunities: a.detector.Find(markets),
		FetchedAt:     a.now().UTC(),
	}
	a.current.Store(snap)

	best := 0.0
	if len(snap.Opportunities) > 0 {
		best = snap.Opportunities[0].PriceDifference
	}
	a.metrics.ObserveRefresh(a.now().Sub(start), len(snap.Groups), len(snap.Opportunities), best)

	a.logger.InfoContext(ctx, "aggregator: refreshed",
		slog.Int("markets", len(markets)),
		slog.Int("groups", len(snap.Groups)),
		slog.Int("opportunities", len(snap.Opportunities)),
		slog.Duration("elapsed", a.now().Sub(start)),
	)

	a.afterRefresh(ctx, snap)
	return snap, nil
}

func (a *Aggregator) fetch(ctx context.Context, src domain.MarketSource) fetchResult {
	platform := src.Platform()
	if a.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.FetchTimeout)
		defer cancel()
	}

	start := a.now()
	markets, err := src.FetchMarkets(ctx)
	elapsed := a.now().Sub(start)
	a.metrics.ObserveFetch(string(platform), elapsed, len(markets), err)

	status := domain.PlatformStatus{
		Platform:   platform,
		FetchedAt:  a.now().UTC(),
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		status.Error = err.Error()
		a.logger.WarnContext(ctx, "aggregator: platform fetch failed",
			slog.String("platform", string(platform)),
			slog.String("error", err.Error()),
		)
		return fetchResult{status: status}
	}
	status.MarketCount = len(markets)
	return fetchResult{markets: markets, status: status}
}

// afterRefresh performs the best-effort side effects of a new snapshot.
func (a *Aggregator) afterRefresh(ctx context.Context, snap *domain.Snapshot) {
	a.recordSnapshots(ctx, snap)
	a.warmCache(ctx, snap)
	a.announce(ctx, snap)

	a.hooksMu.RLock()
	hooks := append([]RefreshHook(nil), a.hooks...)
	a.hooksMu.RUnlock()
	for _, h := range hooks {
		h(ctx, snap)
	}
}

func (a *Aggregator) recordSnapshots(ctx context.Context, snap *domain.Snapshot) {
	if a.snapshots == nil || len(snap.Markets) == 0 {
		return
	}
	rows := make([]domain.PriceSnapshot, len(snap.Markets))
	for i, m := range snap.Markets {
		rows[i] = domain.PriceSnapshot{
			MarketID:    m.ID,
			Platform:    m.Platform,
			Probability: m.Probability,
			Volume:      m.Volume,
			RecordedAt:  snap.FetchedAt,
		}
	}
	if err := a.snapshots.InsertBatch(ctx, rows); err != nil {
		a.logger.WarnContext(ctx, "aggregator: store price snapshots failed", slog.String("error", err.Error()))
		return
	}
	a.metrics.AddSnapshots(len(rows))
}

func (a *Aggregator) warmCache(ctx context.Context, snap *domain.Snapshot) {
	if a.cache == nil {
		return
	}
	for _, m := range snap.Markets {
		if err := a.cache.Set(ctx, m); err != nil {
			a.logger.WarnContext(ctx, "aggregator: cache set failed",
				slog.String("market_id", m.ID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

// snapshotEvent is the bus payload announcing a refresh.
type snapshotEvent struct {
	FetchedAt     time.Time               `json:"fetchedAt"`
	Markets       int                     `json:"markets"`
	Groups        int                     `json:"groups"`
	Opportunities int                     `json:"opportunities"`
	Statuses      []domain.PlatformStatus `json:"statuses"`
}

func (a *Aggregator) announce(ctx context.Context, snap *domain.Snapshot) {
	for _, st := range snap.Statuses {
		if st.Error != "" {
			title := st.Platform.DisplayName() + " fetch failed"
			if err := a.notifier.Notify(ctx, notify.EventPlatformError, title, st.Error); err != nil {
				a.logger.WarnContext(ctx, "aggregator: notify failed", slog.String("error", err.Error()))
			}
		}
	}

	fresh := a.newOpportunities(snap.Opportunities)
	for _, opp := range fresh {
		title := fmt.Sprintf("Arbitrage: %.1f pts on %s", opp.PriceDifference, opp.EventName)
		if err := a.notifier.Notify(ctx, notify.EventArbitrageFound, title, arbitrage.Format(opp)); err != nil {
			a.logger.WarnContext(ctx, "aggregator: notify failed", slog.String("error", err.Error()))
		}
	}

	if a.bus == nil {
		return
	}
	a.publish(ctx, domain.ChannelSnapshot, snapshotEvent{
		FetchedAt:     snap.FetchedAt,
		Markets:       len(snap.Markets),
		Groups:        len(snap.Groups),
		Opportunities: len(snap.Opportunities),
		Statuses:      snap.Statuses,
	})
	if len(fresh) > 0 {
		a.publish(ctx, domain.ChannelArbitrage, fresh)
	}
}

// newOpportunities returns opportunities whose market set was not present
// in the previous snapshot. Ids embed a timestamp, so identity is keyed on
// the sorted market ids.
func (a *Aggregator) newOpportunities(opps []domain.ArbitrageOpportunity) []domain.ArbitrageOpportunity {
	seen := make(map[string]bool, len(opps))
	var fresh []domain.ArbitrageOpportunity
	for _, opp := range opps {
		k := opportunityKey(opp)
		seen[k] = true
		if !a.seenArbs[k] {
			fresh = append(fresh, opp)
		}
	}
	a.seenArbs = seen
	return fresh
}

func opportunityKey(opp domain.ArbitrageOpportunity) string {
	ids := make([]string, len(opp.Markets))
	for i, pp := range opp.Markets {
		ids[i] = pp.Market.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func (a *Aggregator) publish(ctx context.Context, channel string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		a.logger.WarnContext(ctx, "aggregator: marshal event failed", slog.String("error", err.Error()))
		return
	}
	if err := a.bus.Publish(ctx, channel, payload); err != nil {
		a.logger.WarnContext(ctx, "aggregator: publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

// Snapshot returns the latest snapshot; before the first refresh it is
// empty.
func (a *Aggregator) Snapshot() *domain.Snapshot {
	return a.current.Load()
}

// MarketPage is one page of a filtered market listing.
type MarketPage struct {
	Markets []domain.UnifiedMarket `json:"markets"`
	Total   int                    `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

// Markets filters the current snapshot and returns the requested page. A
// non-positive limit returns everything from offset.
func (a *Aggregator) Markets(filter domain.MarketFilter, limit, offset int) MarketPage {
	all := filter.Apply(a.Snapshot().Markets, a.now())
	total := len(all)
	offset = min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}
	return MarketPage{Markets: all[offset:end], Total: total, Limit: limit, Offset: offset}
}

// Market returns a market from the current snapshot.
func (a *Aggregator) Market(id string) (domain.UnifiedMarket, error) {
	m, ok := a.Snapshot().Market(id)
	if !ok {
		return domain.UnifiedMarket{}, domain.ErrNotFound
	}
	return m, nil
}

// Groups returns the event groups; multiOnly keeps cross-listed ones.
func (a *Aggregator) Groups(multiOnly bool) []domain.EventGroup {
	groups := a.Snapshot().Groups
	if multiOnly {
		return matching.MultiMarketGroups(groups)
	}
	return groups
}

// Ungrouped returns markets that matched nothing.
func (a *Aggregator) Ungrouped() []domain.UnifiedMarket {
	return matching.UngroupedMarkets(a.Snapshot().Groups)
}

func (a *Aggregator) Opportunities() []domain.ArbitrageOpportunity {
	return a.Snapshot().Opportunities
}

func (a *Aggregator) PlatformStatuses() []domain.PlatformStatus {
	return a.Snapshot().Statuses
}
