package matching_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/matching"
)

func market(id string, p domain.Platform, q string, c domain.Category, prob, vol float64) domain.UnifiedMarket {
	return domain.UnifiedMarket{ID: id, Platform: p, Question: q, Category: c, Probability: prob, Volume: vol}
}

func trumpScenario() []domain.UnifiedMarket {
	return []domain.UnifiedMarket{
		market("polymarket-1", domain.PlatformPolymarket, "Will Trump win the election?", domain.CategoryPolitics, 62, 500),
		market("kalshi-1", domain.PlatformKalshi, "Will Trump win the 2024 election?", domain.CategoryPolitics, 58, 900),
		market("manifold-1", domain.PlatformManifold, "Will it rain tomorrow?", domain.CategoryOther, 40, 10),
	}
}

func TestGroupMarketsByEventScenario(t *testing.T) {
	groups := matching.GroupMarketsByEvent(trumpScenario(), 0.4)
	require.Len(t, groups, 2)

	g := groups[0]
	assert.Equal(t, "group-polymarket-1", g.ID)
	assert.Equal(t, "Trump Election 2024", g.Name)
	require.Len(t, g.Markets, 2)
	assert.Equal(t, "kalshi-1", g.Markets[0].ID, "members sorted by volume desc")
	assert.Equal(t, "polymarket-1", g.Markets[1].ID)
	assert.Equal(t, []domain.Platform{domain.PlatformPolymarket, domain.PlatformKalshi}, g.Platforms)
	assert.Equal(t, 1400.0, g.TotalVolume)
	assert.Equal(t, 60.0, g.AvgProbability)
	assert.Equal(t, domain.CategoryPolitics, g.Category)
	assert.True(t, g.IsCrossListed())

	s := groups[1]
	assert.Equal(t, "single-manifold-1", s.ID)
	assert.Equal(t, "Will it rain tomorrow?", s.Name)
	assert.Len(t, s.Markets, 1)
	assert.Equal(t, 40.0, s.AvgProbability)
	assert.Equal(t, []domain.Platform{domain.PlatformManifold}, s.Platforms)
}

func TestGroupMarketsByEventEmpty(t *testing.T) {
	groups := matching.GroupMarketsByEvent(nil, 0.5)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestGroupMarketsByEventSingleMarket(t *testing.T) {
	m := market("metaculus-9", domain.PlatformMetaculus, "Will AGI arrive by 2030?", domain.CategoryTechnology, 20, 300)
	for _, threshold := range []float64{0, 0.4, 1} {
		groups := matching.GroupMarketsByEvent([]domain.UnifiedMarket{m}, threshold)
		require.Len(t, groups, 1)
		assert.Equal(t, "single-metaculus-9", groups[0].ID)
		assert.Equal(t, m.Question, groups[0].Name)
	}
}

func TestGroupMarketsByEventThresholdInclusive(t *testing.T) {
	markets := []domain.UnifiedMarket{
		market("a", domain.PlatformPolymarket, "alpha beta gamma", domain.CategoryOther, 10, 1),
		market("b", domain.PlatformKalshi, "alpha beta delta", domain.CategoryOther, 20, 2),
	}
	assert.Len(t, matching.GroupMarketsByEvent(markets, 0.5), 1, "similarity 0.5 joins at threshold 0.5")
	assert.Len(t, matching.GroupMarketsByEvent(markets, 0.51), 2)
}

func TestGroupMarketsByEventNeverMixesCategories(t *testing.T) {
	markets := []domain.UnifiedMarket{
		market("a", domain.PlatformPolymarket, "Bitcoin reserve act passes", domain.CategoryCrypto, 10, 1),
		market("b", domain.PlatformKalshi, "Bitcoin reserve act passes", domain.CategoryPolitics, 20, 2),
	}
	groups := matching.GroupMarketsByEvent(markets, 0)
	assert.Len(t, groups, 2)
}

func TestGroupMarketsByEventIsGreedyAndOrderDependent(t *testing.T) {
	// b is close to both a and c, but a and c are far apart. Whoever seeds
	// first claims b.
	a := market("a", domain.PlatformPolymarket, "alpha beta gamma", domain.CategoryOther, 0, 4)
	b := market("b", domain.PlatformKalshi, "alpha beta gamma delta epsilon", domain.CategoryOther, 0, 2)
	c := market("c", domain.PlatformManifold, "gamma delta epsilon", domain.CategoryOther, 0, 1)

	forward := matching.GroupMarketsByEvent([]domain.UnifiedMarket{a, b, c}, 0.6)
	require.Len(t, forward, 2)
	assert.Equal(t, "group-a", forward[0].ID)

	backward := matching.GroupMarketsByEvent([]domain.UnifiedMarket{c, b, a}, 0.6)
	require.Len(t, backward, 2)
	assert.Equal(t, "single-a", backward[0].ID)
	assert.Equal(t, "group-c", backward[1].ID)
}

func TestGroupMarketsByEventPartition(t *testing.T) {
	questions := []string{
		"Will Bitcoin reach 100k in 2025?",
		"Bitcoin to reach 100k in 2025",
		"Will the Fed cut interest rates in March?",
		"Fed cuts interest rates in March",
		"Will Trump win the election?",
		"Will Trump win the 2024 election?",
		"Who wins the Super Bowl?",
		"Super Bowl winner 2025",
		"Will it snow in London on Christmas?",
		"",
	}
	platforms := domain.Platforms
	var markets []domain.UnifiedMarket
	for i, q := range questions {
		markets = append(markets, market(
			fmt.Sprintf("m-%d", i),
			platforms[i%len(platforms)],
			q,
			matching.InferCategory(q),
			float64(i*7%100),
			float64((i+1)*13%50),
		))
	}

	for _, threshold := range []float64{0, 0.2, 0.4, 0.5, 0.8, 1} {
		groups := matching.GroupMarketsByEvent(markets, threshold)

		seen := map[string]int{}
		for _, g := range groups {
			require.NotEmpty(t, g.Markets)
			for _, m := range g.Markets {
				seen[m.ID]++
				assert.Equal(t, g.Category, m.Category)
			}
		}
		assert.Len(t, seen, len(markets))
		for id, n := range seen {
			assert.Equal(t, 1, n, "market %s appears %d times at threshold %v", id, n, threshold)
		}

		for i := 1; i < len(groups); i++ {
			assert.GreaterOrEqual(t, groups[i-1].TotalVolume, groups[i].TotalVolume)
		}
	}
}

func TestMultiAndUngroupedHelpers(t *testing.T) {
	groups := matching.GroupMarketsByEvent(trumpScenario(), 0.4)

	multi := matching.MultiMarketGroups(groups)
	require.Len(t, multi, 1)
	assert.Equal(t, "group-polymarket-1", multi[0].ID)
	for _, g := range groups {
		assert.Equal(t, g.IsCrossListed(), g.ID == multi[0].ID, "group %s", g.ID)
	}

	single := matching.UngroupedMarkets(groups)
	require.Len(t, single, 1)
	assert.Equal(t, "manifold-1", single[0].ID)
}
