package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/domain"
	storemem "github.com/alanyoungcy/predicthub/internal/store/memory"
)

func TestWatchlistToggleAndMarkets(t *testing.T) {
	ctx := context.Background()
	snap := &domain.Snapshot{Markets: []domain.UnifiedMarket{
		market(domain.PlatformPolymarket, "1", "A?", 50, 1),
		market(domain.PlatformKalshi, "K", "B?", 50, 1),
	}}
	svc := NewWatchlistService(storemem.NewWatchlistStore(), staticSnapshot{snap})

	on, err := svc.Toggle(ctx, "kalshi-K")
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, svc.Add(ctx, "manifold-gone"))
	require.NoError(t, svc.Add(ctx, "polymarket-1"))

	ms, err := svc.Markets(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 2, "ids missing from the snapshot are skipped")
	assert.Equal(t, "kalshi-K", ms[0].ID)

	ids, err := svc.IDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	on, err = svc.Toggle(ctx, "kalshi-K")
	require.NoError(t, err)
	assert.False(t, on)
	watched, err := svc.IsWatched(ctx, "kalshi-K")
	require.NoError(t, err)
	assert.False(t, watched)

	assert.ErrorIs(t, svc.Add(ctx, ""), domain.ErrInvalidInput)

	require.NoError(t, svc.Clear(ctx))
	ids, _ = svc.IDs(ctx)
	assert.Empty(t, ids)
}
