package handler

import (
	"net/http"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// GroupService exposes the event groups of the current snapshot.
type GroupService interface {
	Groups(multiOnly bool) []domain.EventGroup
	Ungrouped() []domain.UnifiedMarket
}

// GroupHandler serves event-group endpoints.
type GroupHandler struct {
	groups GroupService
}

func NewGroupHandler(groups GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// ListGroups returns event groups; multi=true keeps cross-listed ones only.
// GET /api/groups?multi=true
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups := h.groups.Groups(r.URL.Query().Get("multi") == "true")
	if groups == nil {
		groups = []domain.EventGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
		"total":  len(groups),
	})
}

// ListUngrouped returns markets that matched no other market.
// GET /api/groups/ungrouped
func (h *GroupHandler) ListUngrouped(w http.ResponseWriter, r *http.Request) {
	markets := h.groups.Ungrouped()
	if markets == nil {
		markets = []domain.UnifiedMarket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"markets": markets,
		"total":   len(markets),
	})
}
