package service

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// WatchlistService tracks the markets a user follows.
type WatchlistService struct {
	store   domain.WatchlistStore
	markets SnapshotProvider
}

func NewWatchlistService(store domain.WatchlistStore, markets SnapshotProvider) *WatchlistService {
	return &WatchlistService{store: store, markets: markets}
}

func (s *WatchlistService) Add(ctx context.Context, marketID string) error {
	if marketID == "" {
		return fmt.Errorf("watchlist_service: add: %w", domain.ErrInvalidInput)
	}
	if err := s.store.Add(ctx, marketID); err != nil {
		return fmt.Errorf("watchlist_service: add %q: %w", marketID, err)
	}
	return nil
}

func (s *WatchlistService) Remove(ctx context.Context, marketID string) error {
	if err := s.store.Remove(ctx, marketID); err != nil {
		return fmt.Errorf("watchlist_service: remove %q: %w", marketID, err)
	}
	return nil
}

// Toggle flips the watch state and returns the new state.
func (s *WatchlistService) Toggle(ctx context.Context, marketID string) (bool, error) {
	watched, err := s.IsWatched(ctx, marketID)
	if err != nil {
		return false, err
	}
	if watched {
		return false, s.Remove(ctx, marketID)
	}
	return true, s.Add(ctx, marketID)
}

func (s *WatchlistService) IsWatched(ctx context.Context, marketID string) (bool, error) {
	ok, err := s.store.Contains(ctx, marketID)
	if err != nil {
		return false, fmt.Errorf("watchlist_service: contains %q: %w", marketID, err)
	}
	return ok, nil
}

// IDs returns every watched id, including ones absent from the snapshot.
func (s *WatchlistService) IDs(ctx context.Context) ([]string, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("watchlist_service: list: %w", err)
	}
	return ids, nil
}

// Markets returns the watched markets present in the current snapshot, in
// watch order.
func (s *WatchlistService) Markets(ctx context.Context) ([]domain.UnifiedMarket, error) {
	ids, err := s.IDs(ctx)
	if err != nil {
		return nil, err
	}
	snap := s.markets.Snapshot()
	out := make([]domain.UnifiedMarket, 0, len(ids))
	for _, id := range ids {
		if m, ok := snap.Market(id); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *WatchlistService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("watchlist_service: clear: %w", err)
	}
	return nil
}
