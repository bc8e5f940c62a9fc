package memory

import (
	"context"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// MarketCache implements domain.MarketCache on a TTLCache.
type MarketCache struct {
	cache *TTLCache[domain.UnifiedMarket]
}

var _ domain.MarketCache = (*MarketCache)(nil)

// NewMarketCache creates a MarketCache whose entries live for ttl.
func NewMarketCache(ttl time.Duration) *MarketCache {
	return &MarketCache{cache: NewTTLCache[domain.UnifiedMarket](Options{
		TTL:             ttl,
		CleanupInterval: ttl,
	})}
}

func (m *MarketCache) Set(_ context.Context, market domain.UnifiedMarket) error {
	m.cache.Set(market.ID, market)
	return nil
}

// Get returns domain.ErrNotFound for missing or expired entries.
func (m *MarketCache) Get(_ context.Context, id string) (domain.UnifiedMarket, error) {
	market, ok := m.cache.Get(id)
	if !ok {
		return domain.UnifiedMarket{}, domain.ErrNotFound
	}
	return market, nil
}

func (m *MarketCache) Invalidate(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

// Close stops the background sweeper.
func (m *MarketCache) Close() { m.cache.Close() }
