package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// PortfolioService reads account positions from the platforms that expose
// them.
type PortfolioService struct {
	sources map[domain.Platform]domain.PositionSource
}

func NewPortfolioService(sources map[domain.Platform]domain.PositionSource) *PortfolioService {
	return &PortfolioService{sources: sources}
}

// Platforms lists the platforms with a position source.
func (s *PortfolioService) Platforms() []domain.Platform {
	var out []domain.Platform
	for _, p := range domain.Platforms {
		if _, ok := s.sources[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Positions fetches an account's positions on one platform. account is a
// wallet address for Polymarket, a username for Manifold and ignored for
// Kalshi, which uses the configured API key.
func (s *PortfolioService) Positions(ctx context.Context, platform domain.Platform, account string) ([]domain.Position, error) {
	src, ok := s.sources[platform]
	if !ok {
		return nil, fmt.Errorf("portfolio_service: %s: %w", platform, domain.ErrUnknownPlatform)
	}
	if account == "" && platform != domain.PlatformKalshi {
		return nil, fmt.Errorf("portfolio_service: %s account required: %w", platform, domain.ErrInvalidInput)
	}
	positions, err := src.Positions(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("portfolio_service: %s positions: %w", platform, err)
	}
	return positions, nil
}

// Summarize aggregates positions. Sums are computed in decimal to avoid
// drift over many small positions; the win rate is the share of positions
// with a positive P&L.
func Summarize(positions []domain.Position) domain.PortfolioSummary {
	var sum domain.PortfolioSummary
	if len(positions) == 0 {
		return sum
	}

	value, invested, pnl := decimal.Zero, decimal.Zero, decimal.Zero
	wins := 0
	best, worst := 0, 0
	for i, p := range positions {
		value = value.Add(decimal.NewFromFloat(p.CurrentValue))
		invested = invested.Add(decimal.NewFromFloat(p.InvestmentAmount))
		pnl = pnl.Add(decimal.NewFromFloat(p.ProfitLoss))
		if p.IsActive {
			sum.ActivePositions++
		} else {
			sum.ClosedPositions++
		}
		if p.ProfitLoss > 0 {
			wins++
		}
		if p.ProfitLoss > positions[best].ProfitLoss {
			best = i
		}
		if p.ProfitLoss < positions[worst].ProfitLoss {
			worst = i
		}
	}

	sum.TotalValue = value.Round(2).InexactFloat64()
	sum.TotalInvested = invested.Round(2).InexactFloat64()
	sum.TotalProfitLoss = pnl.Round(2).InexactFloat64()
	if invested.IsPositive() {
		sum.TotalProfitLossPercent = pnl.Div(invested).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	sum.WinRate = decimal.NewFromInt(int64(wins)).
		Div(decimal.NewFromInt(int64(len(positions)))).
		Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()

	b, w := positions[best], positions[worst]
	sum.BestPosition = &b
	sum.WorstPosition = &w
	return sum
}

// FilterPositions applies f and returns a new, sorted slice. Sorting
// defaults to profit/loss descending.
func FilterPositions(positions []domain.Position, f domain.PortfolioFilters) []domain.Position {
	out := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		if f.Platform != "" && p.Platform != f.Platform {
			continue
		}
		switch f.Status {
		case domain.PositionStatusActive:
			if !p.IsActive {
				continue
			}
		case domain.PositionStatusClosed:
			if p.IsActive {
				continue
			}
		}
		switch f.Profitability {
		case domain.ProfitabilityProfit:
			if p.ProfitLoss <= 0 {
				continue
			}
		case domain.ProfitabilityLoss:
			if p.ProfitLoss >= 0 {
				continue
			}
		}
		out = append(out, p)
	}

	key := positionSortKey(f.SortBy)
	asc := f.SortDirection == domain.SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if asc {
			return a < b
		}
		return a > b
	})
	return out
}

func positionSortKey(field string) func(domain.Position) float64 {
	switch field {
	case domain.SortByCurrentValue:
		return func(p domain.Position) float64 { return p.CurrentValue }
	case domain.SortByProfitLossPercent:
		return func(p domain.Position) float64 { return p.ProfitLossPercent }
	case domain.SortByCloseDate:
		// Undated positions sort after dated ones ascending.
		return func(p domain.Position) float64 {
			if p.CloseDate == nil {
				return math.Inf(1)
			}
			return float64(p.CloseDate.Unix())
		}
	default:
		return func(p domain.Position) float64 { return p.ProfitLoss }
	}
}
