package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// WatchlistStore implements domain.WatchlistStore, preserving insertion
// order.
type WatchlistStore struct {
	mu  sync.RWMutex
	ids []string
}

var _ domain.WatchlistStore = (*WatchlistStore)(nil)

func NewWatchlistStore() *WatchlistStore {
	return &WatchlistStore{}
}

func (s *WatchlistStore) Add(_ context.Context, marketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.ids, marketID) {
		s.ids = append(s.ids, marketID)
	}
	return nil
}

func (s *WatchlistStore) Remove(_ context.Context, marketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return id == marketID })
	return nil
}

func (s *WatchlistStore) Contains(_ context.Context, marketID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, marketID), nil
}

func (s *WatchlistStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids), nil
}

func (s *WatchlistStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.ids = nil
	s.mu.Unlock()
	return nil
}
