package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func filterFixture(now time.Time) []domain.UnifiedMarket {
	soon := now.Add(6 * time.Hour)
	later := now.Add(10 * 24 * time.Hour)
	return []domain.UnifiedMarket{
		{ID: "polymarket-1", Question: "Will Bitcoin hit 100k?", Platform: domain.PlatformPolymarket, Probability: 40, Volume: 5000, Category: domain.CategoryCrypto, EndDate: &later},
		{ID: "kalshi-A", Question: "Fed rate cut in March?", Platform: domain.PlatformKalshi, Probability: 70, Volume: 900, Category: domain.CategoryEconomics, EndDate: &soon},
		{ID: "manifold-x", Question: "Will it snow in Paris?", Platform: domain.PlatformManifold, Probability: 15, Volume: 50, Category: domain.CategoryOther},
	}
}

func ids(ms []domain.UnifiedMarket) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestMarketFilterApply(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	markets := filterFixture(now)

	tests := []struct {
		name   string
		filter domain.MarketFilter
		want   []string
	}{
		{"zero filter keeps order", domain.MarketFilter{}, []string{"polymarket-1", "kalshi-A", "manifold-x"}},
		{"platform", domain.MarketFilter{Platforms: []domain.Platform{domain.PlatformKalshi}}, []string{"kalshi-A"}},
		{"category", domain.MarketFilter{Category: domain.CategoryCrypto}, []string{"polymarket-1"}},
		{"search is case-insensitive", domain.MarketFilter{Search: "  PARIS "}, []string{"manifold-x"}},
		{"volume range", domain.MarketFilter{MinVolume: ptr(100.0), MaxVolume: ptr(1000.0)}, []string{"kalshi-A"}},
		{"probability range", domain.MarketFilter{MinProbability: ptr(20.0), MaxProbability: ptr(50.0)}, []string{"polymarket-1"}},
		{"ending within 24h keeps undated", domain.MarketFilter{EndingWithin: domain.Ending24h}, []string{"kalshi-A", "manifold-x"}},
		{"sort volume desc", domain.MarketFilter{SortBy: domain.SortVolume, Direction: domain.SortDesc}, []string{"polymarket-1", "kalshi-A", "manifold-x"}},
		{"sort probability asc", domain.MarketFilter{SortBy: domain.SortProbability, Direction: domain.SortAsc}, []string{"manifold-x", "polymarket-1", "kalshi-A"}},
		{"sort end date puts undated last", domain.MarketFilter{SortBy: domain.SortEndDate, Direction: domain.SortAsc}, []string{"kalshi-A", "polymarket-1", "manifold-x"}},
		{"sort platform", domain.MarketFilter{SortBy: domain.SortPlatform, Direction: domain.SortAsc}, []string{"kalshi-A", "manifold-x", "polymarket-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(markets, now)))
		})
	}
}

func TestMarketFilterDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	markets := filterFixture(now)
	before := ids(markets)
	domain.MarketFilter{SortBy: domain.SortProbability}.Apply(markets, now)
	assert.Equal(t, before, ids(markets))
}
