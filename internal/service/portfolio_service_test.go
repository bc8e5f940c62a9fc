package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

type fakePositions struct {
	positions []domain.Position
	account   string
}

func (f *fakePositions) Positions(_ context.Context, account string) ([]domain.Position, error) {
	f.account = account
	return f.positions, nil
}

func samplePositions() []domain.Position {
	soon := fixedNow.Add(24 * time.Hour)
	later := fixedNow.Add(72 * time.Hour)
	return []domain.Position{
		{ID: "a", Platform: domain.PlatformPolymarket, InvestmentAmount: 100, CurrentValue: 150, ProfitLoss: 50, ProfitLossPercent: 50, IsActive: true, CloseDate: &later},
		{ID: "b", Platform: domain.PlatformManifold, InvestmentAmount: 200, CurrentValue: 120, ProfitLoss: -80, ProfitLossPercent: -40, IsActive: true, CloseDate: &soon},
		{ID: "c", Platform: domain.PlatformPolymarket, InvestmentAmount: 0.1, CurrentValue: 0.3, ProfitLoss: 0.2, ProfitLossPercent: 200, IsActive: false},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(samplePositions())
	assert.Equal(t, 270.3, s.TotalValue)
	assert.Equal(t, 300.1, s.TotalInvested)
	assert.Equal(t, -29.8, s.TotalProfitLoss)
	assert.Equal(t, -9.93, s.TotalProfitLossPercent)
	assert.Equal(t, 2, s.ActivePositions)
	assert.Equal(t, 1, s.ClosedPositions)
	assert.Equal(t, 66.67, s.WinRate)
	require.NotNil(t, s.BestPosition)
	assert.Equal(t, "a", s.BestPosition.ID)
	assert.Equal(t, "b", s.WorstPosition.ID)

	empty := Summarize(nil)
	assert.Nil(t, empty.BestPosition)
	assert.Zero(t, empty.WinRate)
}

func TestFilterPositions(t *testing.T) {
	ps := samplePositions()

	got := FilterPositions(ps, domain.PortfolioFilters{})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "c", "b"}, ids(got), "profit/loss descending by default")

	got = FilterPositions(ps, domain.PortfolioFilters{Platform: domain.PlatformPolymarket, Status: domain.PositionStatusActive})
	assert.Equal(t, []string{"a"}, ids(got))

	got = FilterPositions(ps, domain.PortfolioFilters{Profitability: domain.ProfitabilityLoss})
	assert.Equal(t, []string{"b"}, ids(got))

	got = FilterPositions(ps, domain.PortfolioFilters{SortBy: domain.SortByCloseDate, SortDirection: domain.SortAsc})
	assert.Equal(t, []string{"b", "a", "c"}, ids(got), "undated last")
}

func ids(ps []domain.Position) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestPortfolioPositions(t *testing.T) {
	poly := &fakePositions{positions: samplePositions()[:1]}
	kalshi := &fakePositions{}
	svc := NewPortfolioService(map[domain.Platform]domain.PositionSource{
		domain.PlatformPolymarket: poly,
		domain.PlatformKalshi:     kalshi,
	})
	ctx := context.Background()

	got, err := svc.Positions(ctx, domain.PlatformPolymarket, "0xabc")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "0xabc", poly.account)

	_, err = svc.Positions(ctx, domain.PlatformPolymarket, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Positions(ctx, domain.PlatformKalshi, "")
	assert.NoError(t, err)

	_, err = svc.Positions(ctx, domain.PlatformMetaculus, "me")
	assert.ErrorIs(t, err, domain.ErrUnknownPlatform)

	assert.Equal(t, []domain.Platform{domain.PlatformPolymarket, domain.PlatformKalshi}, svc.Platforms())
}
