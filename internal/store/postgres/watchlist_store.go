package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// WatchlistStore implements domain.WatchlistStore.
type WatchlistStore struct {
	pool *pgxpool.Pool
}

var _ domain.WatchlistStore = (*WatchlistStore)(nil)

// NewWatchlistStore creates a WatchlistStore.
func NewWatchlistStore(pool *pgxpool.Pool) *WatchlistStore {
	return &WatchlistStore{pool: pool}
}

// Add watches a market; adding twice is a no-op.
func (s *WatchlistStore) Add(ctx context.Context, marketID string) error {
	const query = `INSERT INTO watchlist (market_id) VALUES ($1) ON CONFLICT (market_id) DO NOTHING`
	if _, err := s.pool.Exec(ctx, query, marketID); err != nil {
		return fmt.Errorf("postgres: watchlist add %s: %w", marketID, err)
	}
	return nil
}

// Remove unwatches a market; removing an absent id is a no-op.
func (s *WatchlistStore) Remove(ctx context.Context, marketID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM watchlist WHERE market_id = $1`, marketID); err != nil {
		return fmt.Errorf("postgres: watchlist remove %s: %w", marketID, err)
	}
	return nil
}

func (s *WatchlistStore) Contains(ctx context.Context, marketID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM watchlist WHERE market_id = $1)`, marketID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("postgres: watchlist contains %s: %w", marketID, err)
	}
	return ok, nil
}

// List returns watched ids in the order they were added.
func (s *WatchlistStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT market_id FROM watchlist ORDER BY added_at, market_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: watchlist list: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: watchlist list: %w", err)
	}
	return ids, nil
}

func (s *WatchlistStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("postgres: watchlist clear: %w", err)
	}
	return nil
}
