package domain

import (
	"context"
	"time"
)

// AlertStore persists price alerts.
type AlertStore interface {
	Create(ctx context.Context, alert Alert) error
	Get(ctx context.Context, id string) (Alert, error)
	List(ctx context.Context) ([]Alert, error)
	Delete(ctx context.Context, id string) error
	MarkTriggered(ctx context.Context, id string, at time.Time) error
}

// WatchlistStore persists the set of watched market ids.
type WatchlistStore interface {
	Add(ctx context.Context, marketID string) error
	Remove(ctx context.Context, marketID string) error
	Contains(ctx context.Context, marketID string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// PriceSnapshotStore records probability observations per refresh.
type PriceSnapshotStore interface {
	InsertBatch(ctx context.Context, snaps []PriceSnapshot) error
	ListByMarket(ctx context.Context, marketID string, since time.Time) ([]PriceSnapshot, error)
	ListBefore(ctx context.Context, before time.Time) ([]PriceSnapshot, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
