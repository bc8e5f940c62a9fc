package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/cache/memory"
	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/metrics"
	"github.com/alanyoungcy/predicthub/internal/server/handler"
	"github.com/alanyoungcy/predicthub/internal/service"
	storemem "github.com/alanyoungcy/predicthub/internal/store/memory"
)

type staticSource struct {
	platform domain.Platform
	markets  []domain.UnifiedMarket
}

func (s staticSource) Platform() domain.Platform { return s.platform }

func (s staticSource) FetchMarkets(context.Context) ([]domain.UnifiedMarket, error) {
	return s.markets, nil
}

func newTestServer(t *testing.T, rateLimit int) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sources := []domain.MarketSource{
		staticSource{domain.PlatformPolymarket, []domain.UnifiedMarket{{
			ID: "polymarket-1", Question: "Will Trump win the election?", Platform: domain.PlatformPolymarket,
			Probability: 40, Volume: 1000, Category: domain.CategoryPolitics,
		}}},
		staticSource{domain.PlatformKalshi, []domain.UnifiedMarket{{
			ID: "kalshi-KX-1", Question: "Will Trump win the 2024 election?", Platform: domain.PlatformKalshi,
			Probability: 50, Volume: 500, Category: domain.CategoryPolitics,
		}}},
	}
	m := metrics.New()
	bus := memory.NewSignalBus()
	cache := memory.NewMarketCache(time.Minute)
	t.Cleanup(cache.Close)

	agg := service.NewAggregator(sources, service.AggregatorConfig{GroupThreshold: 0.4}, service.AggregatorDeps{Metrics: m, Cache: cache}, logger)
	alerts := service.NewAlertService(storemem.NewAlertStore(), agg, bus, nil, m, logger)
	watch := service.NewWatchlistService(storemem.NewWatchlistStore(), agg)
	hist := service.NewHistoryService(nil, nil, agg, nil, logger)
	embed := service.NewEmbedService(cache, agg, nil, logger)
	portfolio := service.NewPortfolioService(nil)

	h := NewHandler(Config{
		CORSOrigins: []string{"https://app.example"},
		RateLimit:   rateLimit,
		RateWindow:  time.Minute,
	}, Handlers{
		Health:    handler.NewHealthHandler(logger),
		Status:    handler.NewStatusHandler("serve", agg),
		Markets:   handler.NewMarketHandler(agg, logger),
		Groups:    handler.NewGroupHandler(agg),
		Arb:       handler.NewArbHandler(agg),
		History:   handler.NewHistoryHandler(hist, logger),
		Embed:     handler.NewEmbedHandler(embed, logger),
		Alerts:    handler.NewAlertHandler(alerts, logger),
		Watchlist: handler.NewWatchlistHandler(watch, logger),
		Portfolio: handler.NewPortfolioHandler(portfolio, logger),
		Refresh:   handler.NewRefreshHandler(agg, logger),
	}, Deps{Limiter: memory.NewRateLimiter(), Metrics: m}, logger)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, m
}

func do(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestServerEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/refresh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"markets":2`)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/markets?sort=probability&dir=desc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page service.MarketPage
	require.NoError(t, json.Unmarshal(body, &page))
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "kalshi-KX-1", page.Markets[0].ID)

	_, body = do(t, http.MethodGet, srv.URL+"/api/groups?multi=true", "")
	assert.Contains(t, string(body), `"total":1`)

	_, body = do(t, http.MethodGet, srv.URL+"/api/arbitrage", "")
	assert.Contains(t, string(body), "Buy YES on polymarket at 40.0%, Sell YES on kalshi at 50.0%")

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/alerts", `{"marketId":"kalshi-KX-1","condition":"above","threshold":60}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/watchlist/kalshi-KX-1/toggle", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"watched":true`)

	_, body = do(t, http.MethodGet, srv.URL+"/api/history/kalshi-KX-1?range=24h", "")
	assert.Contains(t, string(body), `"source":"estimated"`)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/embed/kalshi-KX-1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/portfolio/kalshi", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `route="POST /api/refresh"`)
}

func TestServerEmbedPreflightBypassesOriginList(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/embed/kalshi-KX-1", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://someones-blog.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	var last int
	for i := 0; i < 3; i++ {
		resp, _ := do(t, http.MethodGet, srv.URL+"/api/health", "")
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
