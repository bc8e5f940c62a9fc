package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// Refresher runs one aggregation pass.
type Refresher interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
}

// RefreshHandler triggers an on-demand refresh.
type RefreshHandler struct {
	refresher Refresher
	logger    *slog.Logger
}

func NewRefreshHandler(refresher Refresher, logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{refresher: refresher, logger: logHandler(logger, "refresh")}
}

type refreshResponse struct {
	Markets       int                     `json:"markets"`
	Groups        int                     `json:"groups"`
	Opportunities int                     `json:"opportunities"`
	Platforms     []domain.PlatformStatus `json:"platforms"`
	FetchedAt     time.Time               `json:"fetchedAt"`
}

// TriggerRefresh fetches every platform and waits for the new snapshot.
// POST /api/refresh
func (h *RefreshHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "handler: refresh requested")
	snap, err := h.refresher.Refresh(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Markets:       len(snap.Markets),
		Groups:        len(snap.Groups),
		Opportunities: len(snap.Opportunities),
		Platforms:     snap.Statuses,
		FetchedAt:     snap.FetchedAt,
	})
}
