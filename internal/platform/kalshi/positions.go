package kalshi

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

// Positions returns the holdings of the configured API key. The account
// argument is ignored; Kalshi positions are tied to the signing key.
//
// GET /portfolio/positions (signed)
func (a *Adapter) Positions(ctx context.Context, _ string) ([]domain.Position, error) {
	if !a.HasCredentials() {
		return nil, fmt.Errorf("kalshi: credentials not configured: %w", domain.ErrUnauthorized)
	}

	var resp apiPositionsResponse
	if err := a.client.GetJSON(ctx, "/portfolio/positions", nil, &resp, a.signed()); err != nil {
		return nil, fmt.Errorf("kalshi: get positions: %w", err)
	}

	held := make([]apiPosition, 0, len(resp.MarketPositions))
	for _, p := range resp.MarketPositions {
		if p.Position != 0 {
			held = append(held, p)
		}
	}

	// Market lookups are best effort; a missing market leaves the
	// position priced at its entry.
	markets := make([]*apiMarket, len(held))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range held {
		g.Go(func() error {
			if m, err := a.rawMarket(gctx, held[i].Ticker); err == nil {
				markets[i] = &m
			}
			return nil
		})
	}
	_ = g.Wait()

	positions := make([]domain.Position, 0, len(held))
	for i, p := range held {
		positions = append(positions, toPosition(p, markets[i]))
	}
	return positions, nil
}

func toPosition(p apiPosition, m *apiMarket) domain.Position {
	size := math.Abs(p.Position)
	yes := p.Position > 0
	outcome, side := "NO", "no"
	if yes {
		outcome, side = "YES", "yes"
	}

	entry := 50.0
	if p.MarketExposure > 0 {
		entry = p.MarketExposure / size
	}
	current := entry
	title := p.Ticker
	active := true
	var closeDate *time.Time
	if m != nil {
		if m.LastPrice > 0 {
			current = m.LastPrice
			if !yes {
				current = 100 - m.LastPrice
			}
		}
		title = restclient.FirstNonEmpty(m.Title, p.Ticker)
		active = m.Status == "" || m.Status == "open" || m.Status == "active"
		closeDate = restclient.ParseTime(restclient.FirstNonEmpty(m.CloseTime, m.ExpirationTime))
	}

	invested := size * entry / 100
	value := size * current / 100
	pnl := value - invested
	pct := 0.0
	if invested > 0 {
		pct = pnl / invested * 100
	}

	return domain.Position{
		ID:                "kalshi-" + p.Ticker + "-" + side,
		Platform:          domain.PlatformKalshi,
		MarketQuestion:    title,
		Outcome:           outcome,
		EntryPrice:        entry,
		CurrentPrice:      current,
		Quantity:          size,
		InvestmentAmount:  invested,
		CurrentValue:      value,
		ProfitLoss:        pnl,
		ProfitLossPercent: pct,
		CloseDate:         closeDate,
		MarketURL:         siteURL + seriesOf(p.Ticker),
		IsActive:          active,
	}
}
