package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// uniqueViolation is the SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// AlertStore implements domain.AlertStore.
type AlertStore struct {
	pool *pgxpool.Pool
}

var _ domain.AlertStore = (*AlertStore)(nil)

// NewAlertStore creates an AlertStore.
func NewAlertStore(pool *pgxpool.Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

const alertColumns = `id, market_id, market_question, platform, condition, threshold, created_at, triggered, triggered_at`

// Create inserts a new alert.
func (s *AlertStore) Create(ctx context.Context, a domain.Alert) error {
	query := `INSERT INTO alerts (` + alertColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.pool.Exec(ctx, query,
		a.ID, a.MarketID, a.MarketQuestion, string(a.Platform), string(a.Condition),
		a.Threshold, a.CreatedAt, a.Triggered, a.TriggeredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("postgres: create alert %s: %w", a.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("postgres: create alert %s: %w", a.ID, err)
	}
	return nil
}

// Get returns an alert by id.
func (s *AlertStore) Get(ctx context.Context, id string) (domain.Alert, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Alert{}, domain.ErrNotFound
		}
		return domain.Alert{}, fmt.Errorf("postgres: get alert %s: %w", id, err)
	}
	return a, nil
}

// List returns all alerts, newest first.
func (s *AlertStore) List(ctx context.Context) ([]domain.Alert, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+alertColumns+` FROM alerts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list alerts: %w", err)
	}
	alerts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Alert, error) {
		return scanAlert(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list alerts: %w", err)
	}
	return alerts, nil
}

// Delete removes an alert.
func (s *AlertStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete alert %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkTriggered flags an alert as fired. Already-triggered alerts keep
// their original timestamp.
func (s *AlertStore) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE alerts SET triggered = TRUE, triggered_at = COALESCE(triggered_at, $2)
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("postgres: mark alert %s triggered: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAlert(row pgx.Row) (domain.Alert, error) {
	var a domain.Alert
	var platform, condition string
	err := row.Scan(
		&a.ID, &a.MarketID, &a.MarketQuestion, &platform, &condition,
		&a.Threshold, &a.CreatedAt, &a.Triggered, &a.TriggeredAt,
	)
	a.Platform = domain.Platform(platform)
	a.Condition = domain.AlertCondition(condition)
	return a, err
}
