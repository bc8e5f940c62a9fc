package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/domain"
	storemem "github.com/alanyoungcy/predicthub/internal/store/memory"
)

func TestEstimateHistoryShape(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	cases := []struct {
		r      domain.HistoryRange
		points int
		step   int64
	}{
		{domain.Range24h, 24, 3600},
		{domain.Range7d, 28, 6 * 3600},
		{domain.Range30d, 30, 24 * 3600},
		{domain.RangeAll, 52, 7 * 24 * 3600},
	}
	for _, tc := range cases {
		t.Run(string(tc.r), func(t *testing.T) {
			pts := EstimateHistory(97.5, tc.r, fixedNow, rng)
			require.Len(t, pts, tc.points+1)
			assert.Equal(t, fixedNow.Unix(), pts[len(pts)-1].Time)
			assert.Equal(t, 97.5, pts[len(pts)-1].Value)
			for i := 1; i < len(pts); i++ {
				assert.Equal(t, tc.step, pts[i].Time-pts[i-1].Time)
			}
			for _, p := range pts[:len(pts)-1] {
				assert.GreaterOrEqual(t, p.Value, 1.0)
				assert.LessOrEqual(t, p.Value, 99.0)
			}
		})
	}
}

func historyFixture(src *fakeSource, snaps domain.PriceSnapshotStore) *HistoryService {
	snap := &domain.Snapshot{Markets: src.markets}
	svc := NewHistoryService(
		map[domain.Platform]domain.HistorySource{src.platform: src},
		map[domain.Platform]domain.MarketLookup{src.platform: src},
		staticSnapshot{snap},
		snaps,
		discardLogger(),
	)
	svc.now = fixedClock
	return svc
}

func TestHistoryPrefersPlatform(t *testing.T) {
	src := &fakeSource{
		platform: domain.PlatformManifold,
		markets:  []domain.UnifiedMarket{market(domain.PlatformManifold, "abc", "Q?", 30, 1)},
		history:  []domain.HistoryPoint{{Time: 1, Value: 20}, {Time: 2, Value: 30}},
	}
	h, err := historyFixture(src, nil).History(context.Background(), "manifold-abc", domain.Range7d)
	require.NoError(t, err)
	assert.Equal(t, "manifold", h.Source)
	assert.Len(t, h.Points, 2)
}

func TestHistoryFallsBackToSnapshots(t *testing.T) {
	src := &fakeSource{
		platform: domain.PlatformKalshi,
		markets:  []domain.UnifiedMarket{market(domain.PlatformKalshi, "K", "Q?", 30, 1)},
		histErr:  errors.New("kalshi down"),
	}
	store := storemem.NewPriceSnapshotStore(0)
	require.NoError(t, store.InsertBatch(context.Background(), []domain.PriceSnapshot{
		{MarketID: "kalshi-K", Probability: 28, RecordedAt: fixedNow.Add(-2 * time.Hour)},
		{MarketID: "kalshi-K", Probability: 30, RecordedAt: fixedNow.Add(-time.Hour)},
		{MarketID: "kalshi-K", Probability: 10, RecordedAt: fixedNow.Add(-48 * time.Hour)},
	}))

	h, err := historyFixture(src, store).History(context.Background(), "kalshi-K", domain.Range24h)
	require.NoError(t, err)
	assert.Equal(t, domain.HistorySourceSnapshots, h.Source)
	require.Len(t, h.Points, 2, "outside the range is excluded")
	assert.Equal(t, 28.0, h.Points[0].Value)
}

func TestHistoryEstimatesAsLastResort(t *testing.T) {
	src := &fakeSource{
		platform: domain.PlatformPolymarket,
		markets:  []domain.UnifiedMarket{market(domain.PlatformPolymarket, "9", "Q?", 44, 1)},
	}
	h, err := historyFixture(src, storemem.NewPriceSnapshotStore(0)).History(context.Background(), "polymarket-9", domain.Range30d)
	require.NoError(t, err)
	assert.Equal(t, domain.HistorySourceEstimated, h.Source)
	assert.Len(t, h.Points, 31)
	assert.Equal(t, 44.0, h.Points[30].Value)
}

func TestHistoryErrors(t *testing.T) {
	src := &fakeSource{platform: domain.PlatformPolymarket}
	svc := historyFixture(src, nil)

	_, err := svc.History(context.Background(), "nowhere-1", domain.Range7d)
	assert.ErrorIs(t, err, domain.ErrUnknownPlatform)

	_, err = svc.History(context.Background(), "polymarket-404", domain.Range7d)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
