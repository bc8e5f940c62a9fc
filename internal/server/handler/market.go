package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/service"
)

// MarketService defines the methods that the market handler requires from the
// service layer.
type MarketService interface {
	Markets(filter domain.MarketFilter, limit, offset int) service.MarketPage
	Market(id string) (domain.UnifiedMarket, error)
}

// MarketHandler serves market-related HTTP endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logHandler(logger, "markets"),
	}
}

// ListMarkets returns filtered markets with pagination.
// GET /api/markets?platform=kalshi,manifold&category=crypto&q=bitcoin&sort=volume&dir=desc
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMarketFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset := parseLimitOffset(r)

	page := h.markets.Markets(filter, limit, offset)
	if page.Markets == nil {
		page.Markets = []domain.UnifiedMarket{}
	}
	writeJSON(w, http.StatusOK, page)
}

// GetMarket returns a single market by its ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}
	m, err := h.markets.Market(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get market")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// parseMarketFilter builds a MarketFilter from the query string. Unknown
// enum values are rejected rather than ignored.
func parseMarketFilter(r *http.Request) (domain.MarketFilter, error) {
	q := r.URL.Query()
	var f domain.MarketFilter

	if v := q.Get("platform"); v != "" {
		for _, name := range strings.Split(v, ",") {
			p, err := domain.ParsePlatform(strings.TrimSpace(name))
			if err != nil {
				return f, fmt.Errorf("unknown platform %q", name)
			}
			f.Platforms = append(f.Platforms, p)
		}
	}
	if v := q.Get("category"); v != "" && v != "all" {
		c := domain.Category(v)
		if !c.Valid() {
			return f, fmt.Errorf("unknown category %q", v)
		}
		f.Category = c
	}
	f.Search = q.Get("q")

	var err error
	if f.MinVolume, err = queryFloat(r, "min_volume"); err != nil {
		return f, err
	}
	if f.MaxVolume, err = queryFloat(r, "max_volume"); err != nil {
		return f, err
	}
	if f.MinProbability, err = queryFloat(r, "min_prob"); err != nil {
		return f, err
	}
	if f.MaxProbability, err = queryFloat(r, "max_prob"); err != nil {
		return f, err
	}

	switch e := domain.EndingWithin(q.Get("ending")); e {
	case domain.EndingAny, domain.Ending24h, domain.EndingWeek, domain.EndingMonth:
		f.EndingWithin = e
	default:
		return f, fmt.Errorf("invalid ending %q", e)
	}

	switch s := domain.MarketSortField(q.Get("sort")); s {
	case "", domain.SortVolume, domain.SortProbability, domain.SortEndDate, domain.SortPlatform:
		f.SortBy = s
	default:
		return f, fmt.Errorf("invalid sort %q", s)
	}

	switch d := domain.SortDirection(q.Get("dir")); d {
	case "":
		f.Direction = domain.SortDesc
	case domain.SortAsc, domain.SortDesc:
		f.Direction = d
	default:
		return f, fmt.Errorf("invalid dir %q", d)
	}
	return f, nil
}
