package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// minSnapshotPoints is the fewest stored observations worth charting.
const minSnapshotPoints = 2

// HistoryService resolves price history with a fallback chain: the
// platform's own history, then recorded snapshots, then an estimate.
type HistoryService struct {
	sources   map[domain.Platform]domain.HistorySource
	lookups   map[domain.Platform]domain.MarketLookup
	markets   SnapshotProvider
	snapshots domain.PriceSnapshotStore
	logger    *slog.Logger
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewHistoryService creates a HistoryService. snapshots may be nil.
func NewHistoryService(
	sources map[domain.Platform]domain.HistorySource,
	lookups map[domain.Platform]domain.MarketLookup,
	markets SnapshotProvider,
	snapshots domain.PriceSnapshotStore,
	logger *slog.Logger,
) *HistoryService {
	return &HistoryService{
		sources:   sources,
		lookups:   lookups,
		markets:   markets,
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "history")),
		now:       time.Now,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// History returns the price series of a unified market id over r.
func (s *HistoryService) History(ctx context.Context, marketID string, r domain.HistoryRange) (domain.PriceHistory, error) {
	platform, nativeID, err := domain.SplitMarketID(marketID)
	if err != nil {
		return domain.PriceHistory{}, fmt.Errorf("history_service: %q: %w", marketID, err)
	}
	out := domain.PriceHistory{MarketID: marketID, Range: r}

	market, found := s.markets.Snapshot().Market(marketID)
	if !found {
		if lk, ok := s.lookups[platform]; ok {
			if m, err := lk.GetMarket(ctx, nativeID); err == nil {
				market, found = m, true
			}
		}
	}

	if src, ok := s.sources[platform]; ok {
		id := nativeID
		if found && market.HistoryID != "" {
			id = market.HistoryID
		}
		points, err := src.History(ctx, id, r)
		switch {
		case err != nil:
			s.logger.DebugContext(ctx, "history_service: platform history failed",
				slog.String("market_id", marketID),
				slog.String("error", err.Error()),
			)
		case len(points) > 0:
			out.Source = string(platform)
			out.Points = points
			return out, nil
		}
	}

	if s.snapshots != nil {
		snaps, err := s.snapshots.ListByMarket(ctx, marketID, r.Since(s.now()))
		if err != nil {
			s.logger.WarnContext(ctx, "history_service: snapshot lookup failed",
				slog.String("market_id", marketID),
				slog.String("error", err.Error()),
			)
		} else if len(snaps) >= minSnapshotPoints {
			out.Source = domain.HistorySourceSnapshots
			out.Points = make([]domain.HistoryPoint, len(snaps))
			for i, sn := range snaps {
				out.Points[i] = domain.HistoryPoint{Time: sn.RecordedAt.Unix(), Value: sn.Probability}
			}
			return out, nil
		}
	}

	if !found {
		return domain.PriceHistory{}, fmt.Errorf("history_service: %q: %w", marketID, domain.ErrNotFound)
	}
	s.rngMu.Lock()
	out.Points = EstimateHistory(market.Probability, r, s.now(), s.rng)
	s.rngMu.Unlock()
	out.Source = domain.HistorySourceEstimated
	return out, nil
}

// estimateShape returns the number of steps and the spacing for r.
func estimateShape(r domain.HistoryRange) (int, time.Duration) {
	switch r {
	case domain.Range24h:
		return 24, time.Hour
	case domain.Range7d:
		return 28, 6 * time.Hour
	case domain.Range30d:
		return 30, 24 * time.Hour
	default:
		return 52, 7 * 24 * time.Hour
	}
}

// EstimateHistory synthesises a random walk of points+1 samples ending at
// now with exactly the current price. Earlier values are clamped to
// [1, 99].
func EstimateHistory(current float64, r domain.HistoryRange, now time.Time, rng *rand.Rand) []domain.HistoryPoint {
	points, step := estimateShape(r)
	out := make([]domain.HistoryPoint, 0, points+1)
	end := now.Unix()
	price := current
	for i := points; i >= 0; i-- {
		out = append(out, domain.HistoryPoint{
			Time:  end - int64(i)*int64(step/time.Second),
			Value: math.Max(1, math.Min(99, price)),
		})
		price += (rng.Float64() - 0.5) * 5
	}
	out[len(out)-1].Value = current
	return out
}
