package manifold

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// History rebuilds a price series from the market's bets. The current
// probability is appended as the newest point and the series is thinned to
// the last point of each hour.
//
// GET /market/{id}, then GET /bets?contractId={id}&limit=1000
func (a *Adapter) History(ctx context.Context, id string, r domain.HistoryRange) ([]domain.HistoryPoint, error) {
	m, err := a.rawMarket(ctx, id)
	if err != nil {
		return nil, err
	}
	current := 50.0
	if m.Probability != nil {
		current = *m.Probability * 100
	}

	var bets []apiBet
	q := url.Values{"contractId": {id}, "limit": {betsLimit}}
	if err := a.client.GetJSON(ctx, "/bets", q, &bets); err != nil {
		return nil, fmt.Errorf("manifold: get bets %s: %w", id, err)
	}
	if len(bets) == 0 {
		return nil, nil
	}

	now := a.now()
	var afterMS int64
	if r != domain.RangeAll {
		afterMS = r.Since(now).UnixMilli()
	}

	points := make([]domain.HistoryPoint, 0, len(bets)+1)
	for _, b := range bets {
		ts := b.CreatedTime
		if ts == 0 {
			ts = b.UpdatedTime
		}
		if ts == 0 || ts < afterMS {
			continue
		}
		prob := b.ProbAfter
		if prob == nil || *prob == 0 {
			prob = b.ProbBefore
		}
		if prob == nil {
			continue
		}
		points = append(points, domain.HistoryPoint{Time: ts / 1000, Value: *prob * 100})
	}
	points = append(points, domain.HistoryPoint{Time: now.Unix(), Value: current})

	return dedupeHourly(points), nil
}

// dedupeHourly keeps the last point of each clock hour, oldest first, and
// drops values outside [0,100].
func dedupeHourly(points []domain.HistoryPoint) []domain.HistoryPoint {
	sorted := make([]domain.HistoryPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	out := make([]domain.HistoryPoint, 0, len(sorted))
	for _, p := range sorted {
		if p.Value < 0 || p.Value > 100 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Time/3600 == p.Time/3600 {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
