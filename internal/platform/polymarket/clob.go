package polymarket

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// clobTokenLen separates CLOB token ids (long decimal strings) from Gamma
// market ids and slugs.
const clobTokenLen = 40

// History returns hourly prices for a market. id may be a CLOB token, a
// Gamma market id or a slug.
//
// GET {clob}/prices-history?market={token}&startTs=&endTs=&fidelity=60
func (a *Adapter) History(ctx context.Context, id string, r domain.HistoryRange) ([]domain.HistoryPoint, error) {
	token, err := a.resolveToken(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	params := url.Values{}
	params.Set("market", token)
	params.Set("startTs", strconv.FormatInt(r.Since(now).Unix(), 10))
	params.Set("endTs", strconv.FormatInt(now.Unix(), 10))
	params.Set("fidelity", "60")

	var resp apiPriceHistory
	if err := a.clob.GetJSON(ctx, "/prices-history", params, &resp); err != nil {
		return nil, fmt.Errorf("polymarket/clob: prices history %s: %w", id, err)
	}

	points := make([]domain.HistoryPoint, 0, len(resp.History))
	for _, p := range resp.History {
		v := float64(p.P) * 100
		if p.T <= 0 || v < 0 || v > 100 {
			continue
		}
		points = append(points, domain.HistoryPoint{Time: p.T, Value: v})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}

// resolveToken maps an identifier onto the first CLOB token of its market.
func (a *Adapter) resolveToken(ctx context.Context, id string) (string, error) {
	if len(id) > clobTokenLen {
		return id, nil
	}

	m, err := a.rawMarket(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		m, err = a.marketBySlug(ctx, id)
	}
	if err != nil {
		return "", err
	}
	if len(m.ClobTokenIDs) == 0 {
		return "", fmt.Errorf("polymarket/clob: no token for %s: %w", id, domain.ErrNotFound)
	}
	return m.ClobTokenIDs[0], nil
}
