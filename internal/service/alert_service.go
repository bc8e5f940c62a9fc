package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/metrics"
	"github.com/alanyoungcy/predicthub/internal/notify"
)

// SnapshotProvider exposes the current aggregation snapshot.
type SnapshotProvider interface {
	Snapshot() *domain.Snapshot
}

// AlertService manages one-shot price alerts.
type AlertService struct {
	store    domain.AlertStore
	markets  SnapshotProvider
	bus      domain.SignalBus
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewAlertService creates an AlertService. bus, notifier and m may be nil.
func NewAlertService(
	store domain.AlertStore,
	markets SnapshotProvider,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AlertService {
	return &AlertService{
		store:    store,
		markets:  markets,
		bus:      bus,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With(slog.String("component", "alerts")),
		now:      time.Now,
	}
}

// Create registers an alert on a market present in the current snapshot.
// Threshold is a probability in [0, 100].
func (s *AlertService) Create(ctx context.Context, marketID string, cond domain.AlertCondition, threshold float64) (domain.Alert, error) {
	if !cond.Valid() {
		return domain.Alert{}, fmt.Errorf("alert_service: condition %q: %w", cond, domain.ErrInvalidInput)
	}
	if threshold < 0 || threshold > 100 {
		return domain.Alert{}, fmt.Errorf("alert_service: threshold %.2f out of range: %w", threshold, domain.ErrInvalidInput)
	}
	market, ok := s.markets.Snapshot().Market(marketID)
	if !ok {
		return domain.Alert{}, fmt.Errorf("alert_service: market %q: %w", marketID, domain.ErrNotFound)
	}

	alert := domain.Alert{
		ID:             uuid.NewString(),
		MarketID:       market.ID,
		MarketQuestion: market.Question,
		Platform:       market.Platform,
		Condition:      cond,
		Threshold:      threshold,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.Create(ctx, alert); err != nil {
		return domain.Alert{}, fmt.Errorf("alert_service: create: %w", err)
	}

	s.logger.InfoContext(ctx, "alert_service: alert created",
		slog.String("alert_id", alert.ID),
		slog.String("market_id", alert.MarketID),
		slog.String("condition", string(cond)),
		slog.Float64("threshold", threshold),
	)
	return alert, nil
}

func (s *AlertService) List(ctx context.Context) ([]domain.Alert, error) {
	alerts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("alert_service: list: %w", err)
	}
	return alerts, nil
}

func (s *AlertService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("alert_service: delete %q: %w", id, err)
	}
	return nil
}

// alertEvent is the bus payload for a fired alert.
type alertEvent struct {
	Alert       domain.Alert `json:"alert"`
	Probability float64      `json:"probability"`
}

// Evaluate fires every pending alert whose market in snap meets its
// condition. Each alert fires at most once. It returns the alerts fired
// by this call.
func (s *AlertService) Evaluate(ctx context.Context, snap *domain.Snapshot) ([]domain.Alert, error) {
	alerts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("alert_service: evaluate: %w", err)
	}

	var fired []domain.Alert
	for _, a := range alerts {
		if a.Triggered {
			continue
		}
		market, ok := snap.Market(a.MarketID)
		if !ok || !a.ShouldTrigger(market.Probability) {
			continue
		}

		at := s.now().UTC()
		if err := s.store.MarkTriggered(ctx, a.ID, at); err != nil {
			s.logger.WarnContext(ctx, "alert_service: mark triggered failed",
				slog.String("alert_id", a.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		a.Triggered = true
		a.TriggeredAt = &at
		fired = append(fired, a)
		s.metrics.IncAlertsTriggered()

		s.logger.InfoContext(ctx, "alert_service: alert triggered",
			slog.String("alert_id", a.ID),
			slog.String("market_id", a.MarketID),
			slog.Float64("probability", market.Probability),
		)
		s.deliver(ctx, a, market.Probability)
	}
	return fired, nil
}

func (s *AlertService) deliver(ctx context.Context, a domain.Alert, probability float64) {
	title := fmt.Sprintf("Price alert: %s", a.MarketQuestion)
	msg := fmt.Sprintf("%s is at %.1f%% (%s %.1f%%)", a.Platform.DisplayName(), probability, a.Condition, a.Threshold)
	if err := s.notifier.Notify(ctx, notify.EventAlertTriggered, title, msg); err != nil {
		s.logger.WarnContext(ctx, "alert_service: notify failed", slog.String("error", err.Error()))
	}

	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(alertEvent{Alert: a, Probability: probability})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, domain.ChannelAlerts, payload); err != nil {
		s.logger.WarnContext(ctx, "alert_service: publish failed", slog.String("error", err.Error()))
	}
}

// EvaluateHook adapts Evaluate to an Aggregator refresh hook.
func (s *AlertService) EvaluateHook() RefreshHook {
	return func(ctx context.Context, snap *domain.Snapshot) {
		if _, err := s.Evaluate(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "alert_service: evaluate failed", slog.String("error", err.Error()))
		}
	}
}
