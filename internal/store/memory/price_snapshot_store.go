package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// DefaultSnapshotsPerMarket bounds how many observations are retained for a
// single market.
const DefaultSnapshotsPerMarket = 2000

// PriceSnapshotStore implements domain.PriceSnapshotStore with a bounded
// per-market series. Oldest observations are dropped once the cap is hit.
type PriceSnapshotStore struct {
	mu        sync.RWMutex
	perMarket int
	series    map[string][]domain.PriceSnapshot
}

var _ domain.PriceSnapshotStore = (*PriceSnapshotStore)(nil)

// NewPriceSnapshotStore creates a store keeping at most perMarket points per
// market; non-positive values use DefaultSnapshotsPerMarket.
func NewPriceSnapshotStore(perMarket int) *PriceSnapshotStore {
	if perMarket <= 0 {
		perMarket = DefaultSnapshotsPerMarket
	}
	return &PriceSnapshotStore{perMarket: perMarket, series: make(map[string][]domain.PriceSnapshot)}
}

func (s *PriceSnapshotStore) InsertBatch(_ context.Context, snaps []domain.PriceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sn := range snaps {
		series := s.series[sn.MarketID]
		i := sort.Search(len(series), func(i int) bool { return !series[i].RecordedAt.Before(sn.RecordedAt) })
		if i < len(series) && series[i].RecordedAt.Equal(sn.RecordedAt) {
			continue
		}
		series = append(series, domain.PriceSnapshot{})
		copy(series[i+1:], series[i:])
		series[i] = sn
		if over := len(series) - s.perMarket; over > 0 {
			series = append(series[:0:0], series[over:]...)
		}
		s.series[sn.MarketID] = series
	}
	return nil
}

func (s *PriceSnapshotStore) ListByMarket(_ context.Context, marketID string, since time.Time) ([]domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.series[marketID]
	i := sort.Search(len(series), func(i int) bool { return !series[i].RecordedAt.Before(since) })
	out := make([]domain.PriceSnapshot, len(series)-i)
	copy(out, series[i:])
	return out, nil
}

// ListBefore returns every snapshot older than before, oldest first.
func (s *PriceSnapshotStore) ListBefore(_ context.Context, before time.Time) ([]domain.PriceSnapshot, error) {
	s.mu.RLock()
	var out []domain.PriceSnapshot
	for _, series := range s.series {
		for _, sn := range series {
			if !sn.RecordedAt.Before(before) {
				break
			}
			out = append(out, sn)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].MarketID < out[j].MarketID
		}
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out, nil
}

func (s *PriceSnapshotStore) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, series := range s.series {
		i := sort.Search(len(series), func(i int) bool { return !series[i].RecordedAt.Before(before) })
		if i == 0 {
			continue
		}
		n += int64(i)
		if i == len(series) {
			delete(s.series, id)
			continue
		}
		s.series[id] = append(series[:0:0], series[i:]...)
	}
	return n, nil
}
