package polymarket

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/matching"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

const marketsLimit = 100

// FetchMarkets returns the top open markets by volume.
//
// GET /markets?limit=100&active=true&closed=false&order=volume&ascending=false
func (a *Adapter) FetchMarkets(ctx context.Context) ([]domain.UnifiedMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(marketsLimit))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("order", "volume")
	params.Set("ascending", "false")

	var apiMarkets []apiMarket
	if err := a.gamma.GetJSON(ctx, "/markets", params, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	markets := make([]domain.UnifiedMarket, 0, len(apiMarkets))
	for i := range apiMarkets {
		if m, ok := apiMarkets[i].toUnified(); ok {
			markets = append(markets, m)
		}
	}
	return markets, nil
}

// GetMarket returns a single market by its Gamma id.
func (a *Adapter) GetMarket(ctx context.Context, id string) (domain.UnifiedMarket, error) {
	m, err := a.rawMarket(ctx, id)
	if err != nil {
		return domain.UnifiedMarket{}, err
	}
	u, ok := m.toUnified()
	if !ok {
		return domain.UnifiedMarket{}, fmt.Errorf("polymarket/gamma: market %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (a *Adapter) rawMarket(ctx context.Context, id string) (apiMarket, error) {
	var m apiMarket
	if err := a.gamma.GetJSON(ctx, "/markets/"+url.PathEscape(id), nil, &m); err != nil {
		return apiMarket{}, fmt.Errorf("polymarket/gamma: get market %s: %w", id, err)
	}
	return m, nil
}

// marketBySlug looks a market up by URL slug.
func (a *Adapter) marketBySlug(ctx context.Context, slug string) (apiMarket, error) {
	params := url.Values{}
	params.Set("slug", slug)
	params.Set("limit", "1")

	var ms []apiMarket
	if err := a.gamma.GetJSON(ctx, "/markets", params, &ms); err != nil {
		return apiMarket{}, fmt.Errorf("polymarket/gamma: get market by slug %s: %w", slug, err)
	}
	if len(ms) == 0 {
		return apiMarket{}, fmt.Errorf("polymarket/gamma: %w: slug=%s", domain.ErrNotFound, slug)
	}
	return ms[0], nil
}

// probability converts the first outcome price into a 0-100 integer
// percentage, defaulting to 50.
func (m *apiMarket) probability() float64 {
	if len(m.OutcomePrices) == 0 {
		return 50
	}
	p, err := strconv.ParseFloat(m.OutcomePrices[0], 64)
	if err != nil || math.IsNaN(p) {
		return 50
	}
	return math.Round(p * 100)
}

func (m *apiMarket) volume() float64 {
	if v := float64(m.VolumeNum); v != 0 {
		return v
	}
	return float64(m.Volume)
}

func (m *apiMarket) permalink() string {
	slug := m.Slug
	if len(m.Events) > 0 {
		slug = restclient.FirstNonEmpty(m.Events[0].Slug, m.Events[0].Ticker, m.Slug)
	}
	return siteURL + "/event/" + slug
}

// toUnified maps a Gamma market; closed, unnamed and zero-volume markets
// are rejected.
func (m *apiMarket) toUnified() (domain.UnifiedMarket, bool) {
	if bool(m.Closed) {
		return domain.UnifiedMarket{}, false
	}
	vol := m.volume()
	if m.Question == "" || vol <= 0 {
		return domain.UnifiedMarket{}, false
	}

	u := domain.UnifiedMarket{
		ID:          domain.MarketID(domain.PlatformPolymarket, m.ID),
		Question:    m.Question,
		Platform:    domain.PlatformPolymarket,
		Probability: m.probability(),
		Volume:      vol,
		VolumeLabel: "USDC",
		Category:    matching.InferCategory(m.Question),
		EndDate:     restclient.ParseTime(restclient.FirstNonEmpty(m.EndDateISO, m.EndDate)),
		URL:         m.permalink(),
		ImageURL:    m.Image,
		IsPlayMoney: false,
	}
	if len(m.ClobTokenIDs) > 0 {
		u.HistoryID = m.ClobTokenIDs[0]
	}
	return u, true
}
