package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/service"
)

// PortfolioService fetches positions from a platform.
type PortfolioService interface {
	Positions(ctx context.Context, platform domain.Platform, account string) ([]domain.Position, error)
}

// PortfolioHandler serves portfolio endpoints.
type PortfolioHandler struct {
	portfolio PortfolioService
	logger    *slog.Logger
}

func NewPortfolioHandler(portfolio PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio, logger: logHandler(logger, "portfolio")}
}

type portfolioResponse struct {
	Platform  domain.Platform         `json:"platform"`
	Positions []domain.Position       `json:"positions"`
	Summary   domain.PortfolioSummary `json:"summary"`
}

// GetPortfolio returns filtered positions for an account plus a summary of
// every position, filtered or not.
// GET /api/portfolio/{platform}?account=0xabc&status=active&profitability=profit&sort=profitLoss&dir=desc
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(pathParam(r, "platform"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters, err := parsePortfolioFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	positions, err := h.portfolio.Positions(r.Context(), platform, r.URL.Query().Get("account"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to load positions")
		return
	}

	writeJSON(w, http.StatusOK, portfolioResponse{
		Platform:  platform,
		Positions: service.FilterPositions(positions, filters),
		Summary:   service.Summarize(positions),
	})
}

func parsePortfolioFilters(r *http.Request) (domain.PortfolioFilters, error) {
	q := r.URL.Query()
	f := domain.PortfolioFilters{
		Status:        q.Get("status"),
		Profitability: q.Get("profitability"),
		SortBy:        q.Get("sort"),
		SortDirection: domain.SortDirection(q.Get("dir")),
	}
	switch f.Status {
	case "", domain.PositionStatusAll, domain.PositionStatusActive, domain.PositionStatusClosed:
	default:
		return f, fmt.Errorf("invalid status %q", f.Status)
	}
	switch f.Profitability {
	case "", domain.ProfitabilityAll, domain.ProfitabilityProfit, domain.ProfitabilityLoss:
	default:
		return f, fmt.Errorf("invalid profitability %q", f.Profitability)
	}
	switch f.SortBy {
	case "", domain.SortByProfitLoss, domain.SortByCurrentValue, domain.SortByCloseDate, domain.SortByProfitLossPercent:
	default:
		return f, fmt.Errorf("invalid sort %q", f.SortBy)
	}
	switch f.SortDirection {
	case "", domain.SortAsc, domain.SortDesc:
	default:
		return f, fmt.Errorf("invalid dir %q", f.SortDirection)
	}
	return f, nil
}
