package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// SnapshotSource exposes the latest aggregation snapshot.
type SnapshotSource interface {
	Snapshot() *domain.Snapshot
}

// StatusHandler reports per-platform fetch health and snapshot counts.
type StatusHandler struct {
	mode      string
	snapshots SnapshotSource
}

// NewStatusHandler creates a StatusHandler for the given run mode.
func NewStatusHandler(mode string, snapshots SnapshotSource) *StatusHandler {
	return &StatusHandler{mode: mode, snapshots: snapshots}
}

type statusResponse struct {
	Mode          string                  `json:"mode"`
	Platforms     []domain.PlatformStatus `json:"platforms"`
	Markets       int                     `json:"markets"`
	Groups        int                     `json:"groups"`
	Opportunities int                     `json:"opportunities"`
	FetchedAt     *time.Time              `json:"fetchedAt"`
}

// GetStatus responds with the platform statuses of the latest refresh.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshots.Snapshot()
	resp := statusResponse{Mode: h.mode, Platforms: []domain.PlatformStatus{}}
	if snap != nil {
		if snap.Statuses != nil {
			resp.Platforms = snap.Statuses
		}
		resp.Markets = len(snap.Markets)
		resp.Groups = len(snap.Groups)
		resp.Opportunities = len(snap.Opportunities)
		if !snap.FetchedAt.IsZero() {
			t := snap.FetchedAt
			resp.FetchedAt = &t
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
