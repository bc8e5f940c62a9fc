package kalshi

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/matching"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

const eventsLimit = "200"

// FetchMarkets lists binary events and picks one representative market per
// event. Events whose market fetch fails are skipped.
//
// GET /events?limit=200, then GET /markets?event_ticker=... per event
func (a *Adapter) FetchMarkets(ctx context.Context) ([]domain.UnifiedMarket, error) {
	var events apiEventsResponse
	if err := a.client.GetJSON(ctx, "/events", url.Values{"limit": {eventsLimit}}, &events); err != nil {
		return nil, fmt.Errorf("kalshi: get events: %w", err)
	}

	binary := make([]apiEvent, 0, len(events.Events))
	for _, e := range events.Events {
		if !e.MutuallyExclusive {
			binary = append(binary, e)
		}
	}

	results := make([]*domain.UnifiedMarket, len(binary))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range binary {
		g.Go(func() error {
			var resp apiMarketsResponse
			q := url.Values{"event_ticker": {binary[i].EventTicker}}
			if err := a.client.GetJSON(gctx, "/markets", q, &resp); err != nil {
				return nil
			}
			if m, ok := representative(binary[i], resp.Markets); ok {
				u := eventMarket(binary[i], m)
				results[i] = &u
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("kalshi: get markets: %w", err)
	}

	markets := make([]domain.UnifiedMarket, 0, len(results))
	for _, m := range results {
		if m != nil {
			markets = append(markets, *m)
		}
	}
	sort.SliceStable(markets, func(i, j int) bool { return markets[i].Volume > markets[j].Volume })
	return markets, nil
}

// representative picks the market whose ticker equals the event ticker,
// falling back to the highest-volume market.
func representative(e apiEvent, markets []apiMarket) (apiMarket, bool) {
	if len(markets) == 0 {
		return apiMarket{}, false
	}
	best := -1
	for i, m := range markets {
		if m.Ticker == e.EventTicker {
			return m, true
		}
		if best < 0 || m.Volume > markets[best].Volume {
			best = i
		}
	}
	return markets[best], true
}

func eventTitle(e apiEvent) string {
	if e.SubTitle != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(e.SubTitle)) {
		return e.Title + " (" + e.SubTitle + ")"
	}
	return e.Title
}

// probability returns the yes price in cents: last trade, else bid/ask
// midpoint, else 50, clamped to [1,99].
func probability(m apiMarket) float64 {
	p := 50.0
	if m.LastPrice > 0 {
		p = m.LastPrice
	} else if mid := math.Round((m.YesBid + m.YesAsk) / 2); mid > 0 {
		p = mid
	}
	return math.Max(1, math.Min(99, p))
}

func eventMarket(e apiEvent, m apiMarket) domain.UnifiedMarket {
	title := eventTitle(e)
	var tags []string
	if e.Category != "" {
		tags = append(tags, e.Category)
	}
	return domain.UnifiedMarket{
		ID:          domain.MarketID(domain.PlatformKalshi, m.Ticker),
		Question:    title,
		Platform:    domain.PlatformKalshi,
		Probability: probability(m),
		Volume:      m.Volume / 100,
		VolumeLabel: "USD",
		Category:    matching.InferCategory(title, tags...),
		EndDate:     restclient.ParseTime(restclient.FirstNonEmpty(m.CloseTime, m.ExpirationTime)),
		URL:         siteURL + e.SeriesTicker,
		IsPlayMoney: false,
		HistoryID:   m.Ticker,
	}
}

// seriesOf derives the series ticker from a market ticker
// ("KXFED-25MAR-T4.25" -> "KXFED").
func seriesOf(ticker string) string {
	if i := strings.IndexByte(ticker, '-'); i >= 0 {
		return ticker[:i]
	}
	return ticker
}

// GetMarket returns a single market by ticker. Without the parent event
// the market title is used as the question.
//
// GET /markets/{ticker}
func (a *Adapter) GetMarket(ctx context.Context, ticker string) (domain.UnifiedMarket, error) {
	m, err := a.rawMarket(ctx, ticker)
	if err != nil {
		return domain.UnifiedMarket{}, err
	}
	title := m.Title
	if m.Subtitle != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(m.Subtitle)) {
		title += " (" + m.Subtitle + ")"
	}
	e := apiEvent{
		EventTicker:  m.EventTicker,
		SeriesTicker: seriesOf(m.Ticker),
		Title:        title,
		Category:     m.Category,
	}
	return eventMarket(e, m), nil
}

func (a *Adapter) rawMarket(ctx context.Context, ticker string) (apiMarket, error) {
	var resp apiMarketResponse
	if err := a.client.GetJSON(ctx, "/markets/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return apiMarket{}, fmt.Errorf("kalshi: get market %s: %w", ticker, err)
	}
	if resp.Market.Ticker == "" {
		return apiMarket{}, fmt.Errorf("kalshi: market %s: %w", ticker, domain.ErrNotFound)
	}
	return resp.Market, nil
}
