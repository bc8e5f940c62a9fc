package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

// minPositionSize filters dust left over after a position is sold.
const minPositionSize = 0.01

// Positions returns the open and redeemable positions of a wallet.
//
// GET {data}/positions?user={address}
func (a *Adapter) Positions(ctx context.Context, address string) ([]domain.Position, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return nil, fmt.Errorf("polymarket/data: wallet address required: %w", domain.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("user", address)

	var raw []apiPosition
	if err := a.data.GetJSON(ctx, "/positions", params, &raw); err != nil {
		return nil, fmt.Errorf("polymarket/data: get positions: %w", err)
	}

	positions := make([]domain.Position, 0, len(raw))
	for i := range raw {
		if p, ok := raw[i].toPosition(); ok {
			positions = append(positions, p)
		}
	}
	sort.SliceStable(positions, func(i, j int) bool {
		return abs(positions[i].ProfitLoss) > abs(positions[j].ProfitLoss)
	})
	return positions, nil
}

func (p *apiPosition) toPosition() (domain.Position, bool) {
	size := float64(p.Size)
	if size < minPositionSize {
		return domain.Position{}, false
	}

	avg := float64(p.AvgPrice)
	cur := float64(p.CurPrice)
	invested := float64(p.InitialValue)
	if invested == 0 {
		invested = size * avg
	}
	value := float64(p.CurrentValue)
	if value == 0 {
		value = size * cur
	}
	pnl := value - invested
	pct := 0.0
	if invested > 0 {
		pct = pnl / invested * 100
	}

	key := restclient.FirstNonEmpty(p.ConditionID, p.Asset)
	outcome := strings.ToUpper(restclient.FirstNonEmpty(p.Outcome, "yes"))
	title := p.Title
	if title == "" {
		short := key
		if len(short) > 8 {
			short = short[:8]
		}
		title = "Position " + short + "..."
	}
	link := siteURL
	if slug := restclient.FirstNonEmpty(p.EventSlug, p.Slug); slug != "" {
		link = siteURL + "/event/" + slug
	}

	closeDate := restclient.ParseTime(p.EndDate)
	return domain.Position{
		ID:                "poly-" + key + "-" + outcome,
		Platform:          domain.PlatformPolymarket,
		MarketQuestion:    title,
		Outcome:           outcome,
		EntryPrice:        avg * 100,
		CurrentPrice:      cur * 100,
		Quantity:          size,
		InvestmentAmount:  invested,
		CurrentValue:      value,
		ProfitLoss:        pnl,
		ProfitLossPercent: pct,
		CloseDate:         closeDate,
		MarketURL:         link,
		IsActive:          !bool(p.Redeemable),
	}, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
