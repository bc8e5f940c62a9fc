package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// PriceSnapshotStore implements domain.PriceSnapshotStore.
type PriceSnapshotStore struct {
	pool *pgxpool.Pool
}

var _ domain.PriceSnapshotStore = (*PriceSnapshotStore)(nil)

// NewPriceSnapshotStore creates a PriceSnapshotStore.
func NewPriceSnapshotStore(pool *pgxpool.Pool) *PriceSnapshotStore {
	return &PriceSnapshotStore{pool: pool}
}

// InsertBatch records one refresh worth of observations. Rows colliding on
// (market_id, recorded_at) are ignored.
func (s *PriceSnapshotStore) InsertBatch(ctx context.Context, snaps []domain.PriceSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	const query = `
		INSERT INTO price_snapshots (market_id, platform, probability, volume, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (market_id, recorded_at) DO NOTHING`

	batch := &pgx.Batch{}
	for _, sn := range snaps {
		batch.Queue(query, sn.MarketID, string(sn.Platform), sn.Probability, sn.Volume, sn.RecordedAt)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range snaps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert price snapshot batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListByMarket returns a market's snapshots since the given time, oldest
// first.
func (s *PriceSnapshotStore) ListByMarket(ctx context.Context, marketID string, since time.Time) ([]domain.PriceSnapshot, error) {
	const query = `
		SELECT market_id, platform, probability, volume, recorded_at
		FROM price_snapshots
		WHERE market_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at`
	snaps, err := s.query(ctx, query, marketID, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: list price snapshots %s: %w", marketID, err)
	}
	return snaps, nil
}

// ListBefore returns every snapshot older than before, oldest first.
func (s *PriceSnapshotStore) ListBefore(ctx context.Context, before time.Time) ([]domain.PriceSnapshot, error) {
	const query = `
		SELECT market_id, platform, probability, volume, recorded_at
		FROM price_snapshots
		WHERE recorded_at < $1
		ORDER BY recorded_at`
	snaps, err := s.query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list price snapshots before %s: %w", before.Format(time.RFC3339), err)
	}
	return snaps, nil
}

// DeleteBefore removes snapshots older than before.
func (s *PriceSnapshotStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM price_snapshots WHERE recorded_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete price snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PriceSnapshotStore) query(ctx context.Context, query string, args ...any) ([]domain.PriceSnapshot, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PriceSnapshot, error) {
		var sn domain.PriceSnapshot
		var platform string
		err := row.Scan(&sn.MarketID, &platform, &sn.Probability, &sn.Volume, &sn.RecordedAt)
		sn.Platform = domain.Platform(platform)
		return sn, err
	})
}
