package kalshi

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// History returns the recorded yes prices of a market inside the range.
//
// GET /markets/{ticker}/history
func (a *Adapter) History(ctx context.Context, ticker string, r domain.HistoryRange) ([]domain.HistoryPoint, error) {
	var resp apiHistoryResponse
	if err := a.client.GetJSON(ctx, "/markets/"+url.PathEscape(ticker)+"/history", nil, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: get history %s: %w", ticker, err)
	}

	since := r.Since(a.now()).Unix()
	points := make([]domain.HistoryPoint, 0, len(resp.History))
	for _, p := range resp.History {
		if p.Ts < since {
			continue
		}
		v := float64(p.YesPrice)
		if v == 0 {
			v = float64(p.Price)
		}
		if v < 0 || v > 100 {
			continue
		}
		points = append(points, domain.HistoryPoint{Time: p.Ts, Value: v})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}
