package domain

import (
	"context"
	"time"
)

// MarketCache provides TTL-bounded lookups of unified markets.
type MarketCache interface {
	Set(ctx context.Context, market UnifiedMarket) error
	Get(ctx context.Context, id string) (UnifiedMarket, error)
	Invalidate(ctx context.Context, id string) error
}

// RateLimiter decides whether a keyed caller may proceed within a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// Signal bus channels.
const (
	ChannelSnapshot  = "predicthub:snapshot"
	ChannelAlerts    = "predicthub:alerts"
	ChannelArbitrage = "predicthub:arbitrage"
)

// SignalBus provides pub/sub fan-out of aggregation events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
