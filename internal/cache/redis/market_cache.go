package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// MarketCache implements domain.MarketCache with one hash per market whose
// "data" field holds the JSON-encoded market.
//
// Key schema:
//
//	{prefix}market:{id} - hash, field "data", expires after ttl
type MarketCache struct {
	c   *Client
	ttl time.Duration
}

var _ domain.MarketCache = (*MarketCache)(nil)

// NewMarketCache creates a MarketCache whose entries live for ttl.
func NewMarketCache(c *Client, ttl time.Duration) *MarketCache {
	return &MarketCache{c: c, ttl: ttl}
}

func (mc *MarketCache) marketKey(id string) string { return mc.c.key("market", id) }

// Set stores a market and resets its expiry.
func (mc *MarketCache) Set(ctx context.Context, market domain.UnifiedMarket) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal market %s: %w", market.ID, err)
	}

	key := mc.marketKey(market.ID)
	pipe := mc.c.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", data)
	pipe.Expire(ctx, key, mc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set market %s: %w", market.ID, err)
	}
	return nil
}

// Get returns domain.ErrNotFound when the key is missing or expired.
func (mc *MarketCache) Get(ctx context.Context, id string) (domain.UnifiedMarket, error) {
	data, err := mc.c.rdb.HGet(ctx, mc.marketKey(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.UnifiedMarket{}, domain.ErrNotFound
		}
		return domain.UnifiedMarket{}, fmt.Errorf("redis: get market %s: %w", id, err)
	}

	var market domain.UnifiedMarket
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.UnifiedMarket{}, fmt.Errorf("redis: unmarshal market %s: %w", id, err)
	}
	return market, nil
}

// Invalidate removes a market from the cache.
func (mc *MarketCache) Invalidate(ctx context.Context, id string) error {
	if err := mc.c.rdb.Del(ctx, mc.marketKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate market %s: %w", id, err)
	}
	return nil
}
