package manifold_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/platform/manifold"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

func newAdapter(t *testing.T, h http.Handler) *manifold.Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return manifold.New(srv.URL+"/v0", restclient.Options{MaxRetries: -1})
}

func TestFetchMarkets(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/search-markets", r.URL.Path)
		assert.Equal(t, "liquidity", r.URL.Query().Get("sort"))
		assert.Equal(t, "open", r.URL.Query().Get("filter"))
		_, _ = w.Write([]byte(`[
		  {"id":"m1","question":"Will SpaceX land on Mars by 2030?","outcomeType":"BINARY","probability":0.234,"volume":1520.6,
		   "closeTime":1893456000000,"creatorUsername":"elon","slug":"mars-2030"},
		  {"id":"m2","question":"Which party wins?","outcomeType":"MULTIPLE_CHOICE","volume":10},
		  {"id":"m3","question":"Resolved one","outcomeType":"BINARY","isResolved":true},
		  {"id":"m4","question":"No probability","url":"https://manifold.markets/x/no-prob","volume":3}
		]`))
	}))

	markets, err := a.FetchMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)

	m := markets[0]
	assert.Equal(t, "manifold-m1", m.ID)
	assert.Equal(t, 23.0, m.Probability)
	assert.Equal(t, 1521.0, m.Volume)
	assert.Equal(t, "Mana (Play $)", m.VolumeLabel)
	assert.True(t, m.IsPlayMoney)
	assert.Equal(t, "m1", m.HistoryID)
	assert.Equal(t, "https://manifold.markets/elon/mars-2030", m.URL)
	require.NotNil(t, m.EndDate)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *m.EndDate)

	assert.Equal(t, 50.0, markets[1].Probability)
	assert.Equal(t, "https://manifold.markets/x/no-prob", markets[1].URL)
}

func TestHistoryFromBets(t *testing.T) {
	hour := time.Now().Add(-3 * time.Hour).Truncate(time.Hour)
	ms := func(t time.Time) string { return strconv.FormatInt(t.UnixMilli(), 10) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v0/market/m1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"m1","question":"Q","probability":0.6}`))
	})
	mux.HandleFunc("GET /v0/bets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "m1", r.URL.Query().Get("contractId"))
		_, _ = w.Write([]byte(`[
		  {"createdTime":` + ms(hour.Add(50*time.Minute)) + `,"probAfter":0.45},
		  {"createdTime":` + ms(hour.Add(5*time.Minute)) + `,"probAfter":0.40},
		  {"createdTime":` + ms(hour.Add(70*time.Minute)) + `,"probBefore":0.5},
		  {"createdTime":` + ms(hour.Add(-30*24*time.Hour)) + `,"probAfter":0.1}
		]`))
	})
	a := newAdapter(t, mux)

	points, err := a.History(context.Background(), "m1", domain.Range24h)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.InDelta(t, 45, points[0].Value, 1e-9, "last bet in the hour wins")
	assert.InDelta(t, 50, points[1].Value, 1e-9)
	assert.InDelta(t, 60, points[2].Value, 1e-9, "current probability is the newest point")
	assert.Less(t, points[0].Time, points[1].Time)
	assert.Less(t, points[1].Time, points[2].Time)
}

func TestHistoryWithoutBets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v0/market/m1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"m1","probability":0.6}`))
	})
	mux.HandleFunc("GET /v0/bets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	a := newAdapter(t, mux)

	points, err := a.History(context.Background(), "m1", domain.Range7d)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGetMarketNotFound(t *testing.T) {
	a := newAdapter(t, http.NotFoundHandler())
	_, err := a.GetMarket(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPositions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v0/user/alice", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u1","username":"alice"}`))
	})
	mux.HandleFunc("GET /v0/bets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("userId"))
		_, _ = w.Write([]byte(`[
		  {"contractId":"c1","outcome":"YES","shares":100,"amount":40,"probAfter":0.4},
		  {"contractId":"c1","outcome":"YES","shares":50,"amount":20,"probAfter":0.42},
		  {"contractId":"c1","outcome":"YES","shares":999,"amount":999,"isSold":true},
		  {"contractId":"c2","outcome":"NO","shares":10,"amount":5,"probAfter":0.5},
		  {"contractId":"c3","outcome":"YES","shares":10,"amount":5}
		]`))
	})
	mux.HandleFunc("GET /v0/market/c1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","question":"Market one","probability":0.5,"url":"https://manifold.markets/a/one"}`))
	})
	mux.HandleFunc("GET /v0/market/c2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c2","question":"Market two","probability":0.8}`))
	})
	mux.HandleFunc("GET /v0/market/c3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c3","isResolved":true}`))
	})
	a := newAdapter(t, mux)

	positions, err := a.Positions(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, positions, 2)

	one := positions[0]
	assert.Equal(t, "c1-YES", one.ID)
	assert.Equal(t, "Market one", one.MarketQuestion)
	assert.InDelta(t, 150, one.Quantity, 1e-9)
	assert.InDelta(t, 60, one.InvestmentAmount, 1e-9)
	assert.InDelta(t, 75, one.CurrentValue, 1e-9)
	assert.InDelta(t, 15, one.ProfitLoss, 1e-9)
	assert.InDelta(t, 40, one.EntryPrice, 1e-9)

	two := positions[1]
	assert.Equal(t, "NO", two.Outcome)
	assert.InDelta(t, 20, two.CurrentPrice, 1e-6)
	assert.InDelta(t, -3, two.ProfitLoss, 1e-6)
}

func TestPositionsRequiresUsername(t *testing.T) {
	a := manifold.New("", restclient.Options{})
	_, err := a.Positions(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
