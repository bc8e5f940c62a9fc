package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// AlertService defines the alert operations exposed over HTTP.
type AlertService interface {
	Create(ctx context.Context, marketID string, cond domain.AlertCondition, threshold float64) (domain.Alert, error)
	List(ctx context.Context) ([]domain.Alert, error)
	Delete(ctx context.Context, id string) error
}

// AlertHandler serves price-alert endpoints.
type AlertHandler struct {
	alerts AlertService
	logger *slog.Logger
}

func NewAlertHandler(alerts AlertService, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logHandler(logger, "alerts")}
}

type createAlertRequest struct {
	MarketID  string                `json:"marketId"`
	Condition domain.AlertCondition `json:"condition"`
	Threshold *float64              `json:"threshold"`
}

// ListAlerts returns every alert, newest first.
// GET /api/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// CreateAlert registers a new alert.
// POST /api/alerts {"marketId":"kalshi-X","condition":"above","threshold":60}
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MarketID == "" || req.Threshold == nil {
		writeError(w, http.StatusBadRequest, "marketId and threshold are required")
		return
	}

	alert, err := h.alerts.Create(r.Context(), req.MarketID, req.Condition, *req.Threshold)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to create alert")
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

// DeleteAlert removes an alert.
// DELETE /api/alerts/{id}
func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to delete alert")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
