// Package manifold adapts the Manifold Markets API. Manifold trades play
// money (mana), so every market is flagged IsPlayMoney.
package manifold

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/matching"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

const (
	DefaultBaseURL = "https://api.manifold.markets/v0"

	siteURL     = "https://manifold.markets/"
	volumeLabel = "Mana (Play $)"
	betsLimit   = "1000"
)

// Adapter implements domain.PlatformAdapter for Manifold.
type Adapter struct {
	client *restclient.Client
	now    func() time.Time
}

var _ domain.PlatformAdapter = (*Adapter)(nil)

// New creates an Adapter rooted at baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts restclient.Options) *Adapter {
	opts.BaseURL = restclient.FirstNonEmpty(baseURL, DefaultBaseURL)
	return &Adapter{client: restclient.New(opts), now: time.Now}
}

// Platform returns domain.PlatformManifold.
func (a *Adapter) Platform() domain.Platform { return domain.PlatformManifold }

// FetchMarkets returns the most liquid open binary markets.
//
// GET /search-markets?term=&sort=liquidity&filter=open&limit=100
func (a *Adapter) FetchMarkets(ctx context.Context) ([]domain.UnifiedMarket, error) {
	params := url.Values{}
	params.Set("term", "")
	params.Set("sort", "liquidity")
	params.Set("filter", "open")
	params.Set("limit", "100")

	var raw []apiMarket
	if err := a.client.GetJSON(ctx, "/search-markets", params, &raw); err != nil {
		return nil, fmt.Errorf("manifold: search markets: %w", err)
	}

	markets := make([]domain.UnifiedMarket, 0, len(raw))
	for i := range raw {
		if m, ok := raw[i].toUnified(); ok {
			markets = append(markets, m)
		}
	}
	return markets, nil
}

// GetMarket returns a single market by id.
//
// GET /market/{id}
func (a *Adapter) GetMarket(ctx context.Context, id string) (domain.UnifiedMarket, error) {
	m, err := a.rawMarket(ctx, id)
	if err != nil {
		return domain.UnifiedMarket{}, err
	}
	u, ok := m.toUnified()
	if !ok {
		return domain.UnifiedMarket{}, fmt.Errorf("manifold: market %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (a *Adapter) rawMarket(ctx context.Context, id string) (apiMarket, error) {
	var m apiMarket
	if err := a.client.GetJSON(ctx, "/market/"+url.PathEscape(id), nil, &m); err != nil {
		return apiMarket{}, fmt.Errorf("manifold: get market %s: %w", id, err)
	}
	return m, nil
}

func (m *apiMarket) probabilityPct() float64 {
	if m.Probability == nil {
		return 50
	}
	return math.Round(*m.Probability * 100)
}

// toUnified accepts unresolved binary markets with a question. A missing
// outcome type is treated as binary.
func (m *apiMarket) toUnified() (domain.UnifiedMarket, bool) {
	if m.OutcomeType != "" && m.OutcomeType != "BINARY" {
		return domain.UnifiedMarket{}, false
	}
	if m.IsResolved || m.Question == "" {
		return domain.UnifiedMarket{}, false
	}

	link := m.URL
	if link == "" {
		link = siteURL + m.CreatorUsername + "/" + m.Slug
	}
	var end *time.Time
	if m.CloseTime > 0 {
		t := time.UnixMilli(m.CloseTime).UTC()
		end = &t
	}
	return domain.UnifiedMarket{
		ID:          domain.MarketID(domain.PlatformManifold, m.ID),
		Question:    m.Question,
		Platform:    domain.PlatformManifold,
		Probability: m.probabilityPct(),
		Volume:      math.Round(m.Volume),
		VolumeLabel: volumeLabel,
		Category:    matching.InferCategory(m.Question),
		EndDate:     end,
		URL:         link,
		ImageURL:    m.CoverImageURL,
		IsPlayMoney: true,
		HistoryID:   m.ID,
	}, true
}
