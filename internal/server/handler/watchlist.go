package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// WatchlistService defines the watchlist operations exposed over HTTP.
type WatchlistService interface {
	Add(ctx context.Context, marketID string) error
	Remove(ctx context.Context, marketID string) error
	Toggle(ctx context.Context, marketID string) (bool, error)
	IDs(ctx context.Context) ([]string, error)
	Markets(ctx context.Context) ([]domain.UnifiedMarket, error)
	Clear(ctx context.Context) error
}

// WatchlistHandler serves watchlist endpoints.
type WatchlistHandler struct {
	watchlist WatchlistService
	logger    *slog.Logger
}

func NewWatchlistHandler(watchlist WatchlistService, logger *slog.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist, logger: logHandler(logger, "watchlist")}
}

// ListWatchlist returns the watched ids and those markets present in the
// current snapshot.
// GET /api/watchlist
func (h *WatchlistHandler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	ids, err := h.watchlist.IDs(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list watchlist")
		return
	}
	markets, err := h.watchlist.Markets(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list watchlist")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids, "markets": markets})
}

// AddToWatchlist watches a market.
// PUT /api/watchlist/{id}
func (h *WatchlistHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := h.watchlist.Add(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to update watchlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "watched": true})
}

// RemoveFromWatchlist unwatches a market.
// DELETE /api/watchlist/{id}
func (h *WatchlistHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := h.watchlist.Remove(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to update watchlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "watched": false})
}

// ToggleWatchlist flips the watch state of a market.
// POST /api/watchlist/{id}/toggle
func (h *WatchlistHandler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	watched, err := h.watchlist.Toggle(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to update watchlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "watched": watched})
}

// ClearWatchlist empties the watchlist.
// DELETE /api/watchlist
func (h *WatchlistHandler) ClearWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := h.watchlist.Clear(r.Context()); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to clear watchlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
