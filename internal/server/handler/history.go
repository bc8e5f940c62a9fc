package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// HistoryService resolves price history for a market.
type HistoryService interface {
	History(ctx context.Context, marketID string, r domain.HistoryRange) (domain.PriceHistory, error)
}

// HistoryHandler serves price-history endpoints.
type HistoryHandler struct {
	history HistoryService
	logger  *slog.Logger
}

func NewHistoryHandler(history HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logHandler(logger, "history")}
}

// GetHistory returns the price history of one market. Unknown ranges fall
// back to 7d.
// GET /api/history/{id}?range=24h|7d|30d|all
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}
	hist, err := h.history.History(r.Context(), id, domain.ParseHistoryRange(r.URL.Query().Get("range")))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to load history")
		return
	}
	if hist.Points == nil {
		hist.Points = []domain.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, hist)
}
