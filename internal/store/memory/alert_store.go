// Package memory implements the durable-store interfaces in process memory.
// It is the default backend when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// AlertStore implements domain.AlertStore.
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]domain.Alert
}

var _ domain.AlertStore = (*AlertStore)(nil)

func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[string]domain.Alert)}
}

func (s *AlertStore) Create(_ context.Context, a domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[a.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.alerts[a.ID] = a
	return nil
}

func (s *AlertStore) Get(_ context.Context, id string) (domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return domain.Alert{}, domain.ErrNotFound
	}
	return a, nil
}

// List returns all alerts, newest first.
func (s *AlertStore) List(_ context.Context) ([]domain.Alert, error) {
	s.mu.RLock()
	out := make([]domain.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *AlertStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.alerts, id)
	return nil
}

// MarkTriggered flags an alert as fired, keeping the first trigger time.
func (s *AlertStore) MarkTriggered(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Triggered = true
	if a.TriggeredAt == nil {
		a.TriggeredAt = &at
	}
	s.alerts[id] = a
	return nil
}
