package handler

import (
	"net/http"
	"strconv"

	"github.com/alanyoungcy/predicthub/internal/arbitrage"
	"github.com/alanyoungcy/predicthub/internal/domain"
)

// ArbService defines the methods that the arbitrage handler requires.
type ArbService interface {
	Opportunities() []domain.ArbitrageOpportunity
}

// ArbHandler serves arbitrage-related HTTP endpoints.
type ArbHandler struct {
	arb ArbService
}

// NewArbHandler creates an ArbHandler with the given service.
func NewArbHandler(arb ArbService) *ArbHandler {
	return &ArbHandler{arb: arb}
}

// opportunityView adds the display suggestion to an opportunity.
type opportunityView struct {
	domain.ArbitrageOpportunity
	Summary string `json:"summary"`
}

// listArbResponse wraps the list arbitrage opportunities response.
type listArbResponse struct {
	Opportunities []opportunityView `json:"opportunities"`
	Total         int               `json:"total"`
}

// ListOpportunities returns the opportunities of the latest snapshot, widest
// spread first. min_diff raises the detector's cutoff for this response.
// GET /api/arbitrage?min_diff=5&limit=20
func (h *ArbHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	minDiff, err := queryFloat(r, "min_diff")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	views := make([]opportunityView, 0)
	for _, opp := range h.arb.Opportunities() {
		if minDiff != nil && opp.PriceDifference < *minDiff {
			continue
		}
		views = append(views, opportunityView{ArbitrageOpportunity: opp, Summary: arbitrage.Format(opp)})
		if limit > 0 && len(views) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, listArbResponse{Opportunities: views, Total: len(views)})
}
