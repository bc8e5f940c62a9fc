package manifold

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

const maxPositions = 50

type holding struct {
	contractID string
	outcome    string
	shares     float64
	spent      float64
	prob       float64
}

// Positions aggregates a user's open bets into per-contract positions,
// priced at the current market probability. Resolved markets are skipped.
//
// GET /user/{username}, GET /bets?userId=..., GET /market/{id} per contract
func (a *Adapter) Positions(ctx context.Context, username string) ([]domain.Position, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("manifold: username required: %w", domain.ErrInvalidInput)
	}

	var user apiUser
	if err := a.client.GetJSON(ctx, "/user/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, fmt.Errorf("manifold: get user %s: %w", username, err)
	}

	var bets []apiBet
	q := url.Values{"userId": {user.ID}, "limit": {betsLimit}}
	if err := a.client.GetJSON(ctx, "/bets", q, &bets); err != nil {
		return nil, fmt.Errorf("manifold: get bets for %s: %w", username, err)
	}

	var order []string
	holdings := make(map[string]*holding)
	for _, b := range bets {
		if b.IsSold || b.IsCancelled {
			continue
		}
		key := b.ContractID + "-" + b.Outcome
		h, ok := holdings[key]
		if !ok {
			h = &holding{contractID: b.ContractID, outcome: b.Outcome, prob: 0.5}
			holdings[key] = h
			order = append(order, key)
		}
		h.shares += b.Shares
		h.spent += b.Amount
		if b.ProbAfter != nil && *b.ProbAfter > 0 {
			h.prob = *b.ProbAfter
		}
	}

	positions := make([]domain.Position, 0, len(order))
	for _, key := range order {
		h := holdings[key]
		if h.shares <= 0 {
			continue
		}

		question, link := "", ""
		m, err := a.rawMarket(ctx, h.contractID)
		if err == nil {
			if m.IsResolved {
				continue
			}
			if m.Probability != nil && *m.Probability > 0 {
				h.prob = *m.Probability
			}
			question, link = m.Question, m.URL
		}

		price := h.prob
		if h.outcome != "YES" {
			price = 1 - h.prob
		}
		value := h.shares * price
		pnl := value - h.spent
		pct := 0.0
		if h.spent > 0 {
			pct = pnl / h.spent * 100
		}

		positions = append(positions, domain.Position{
			ID:                key,
			Platform:          domain.PlatformManifold,
			MarketQuestion:    question,
			Outcome:           h.outcome,
			EntryPrice:        h.spent / h.shares * 100,
			CurrentPrice:      price * 100,
			Quantity:          h.shares,
			InvestmentAmount:  h.spent,
			CurrentValue:      value,
			ProfitLoss:        pnl,
			ProfitLossPercent: pct,
			MarketURL:         link,
			IsActive:          true,
		})
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return abs(positions[i].ProfitLoss) > abs(positions[j].ProfitLoss)
	})
	if len(positions) > maxPositions {
		positions = positions[:maxPositions]
	}
	return positions, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
