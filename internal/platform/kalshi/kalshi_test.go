package kalshi_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/platform/kalshi"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

func newAdapter(t *testing.T, h http.Handler, cfg kalshi.Config) *kalshi.Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/trade-api/v2"
	a, err := kalshi.New(cfg, restclient.Options{MaxRetries: -1})
	require.NoError(t, err)
	return a
}

func TestFetchMarkets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /trade-api/v2/events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"events":[
		  {"event_ticker":"KXFED-25MAR","series_ticker":"KXFED","title":"Fed rate decision","sub_title":"March 2025","category":"Economics"},
		  {"event_ticker":"PRES-24","series_ticker":"PRES","title":"Presidential winner","mutually_exclusive":true},
		  {"event_ticker":"KXSNOW","series_ticker":"KXSNOW","title":"Snow in NYC in march 2025?","sub_title":"March 2025"},
		  {"event_ticker":"BROKEN","series_ticker":"BROKEN","title":"Broken event"}
		]}`))
	})
	mux.HandleFunc("GET /trade-api/v2/markets", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("event_ticker") {
		case "KXFED-25MAR":
			_, _ = w.Write([]byte(`{"markets":[
			  {"ticker":"KXFED-25MAR-T4.00","last_price":12,"volume":5000},
			  {"ticker":"KXFED-25MAR-T4.25","last_price":0,"yes_bid":30,"yes_ask":35,"volume":90000,"close_time":"2025-03-19T18:00:00Z"}
			]}`))
		case "KXSNOW":
			_, _ = w.Write([]byte(`{"markets":[
			  {"ticker":"KXSNOW-A","last_price":100,"volume":100000000},
			  {"ticker":"KXSNOW","last_price":0,"volume":10}
			]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	a := newAdapter(t, mux, kalshi.Config{})

	markets, err := a.FetchMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)

	fed := markets[0]
	assert.Equal(t, "kalshi-KXFED-25MAR-T4.25", fed.ID)
	assert.Equal(t, "Fed rate decision (March 2025)", fed.Question)
	assert.Equal(t, 33.0, fed.Probability, "midpoint of bid and ask")
	assert.Equal(t, 900.0, fed.Volume)
	assert.Equal(t, "USD", fed.VolumeLabel)
	assert.Equal(t, domain.CategoryEconomics, fed.Category)
	assert.Equal(t, "https://kalshi.com/markets/KXFED", fed.URL)
	require.NotNil(t, fed.EndDate)
	assert.Equal(t, 2025, fed.EndDate.Year())

	snow := markets[1]
	assert.Equal(t, "kalshi-KXSNOW", snow.ID, "ticker matching the event wins over volume")
	assert.Equal(t, "Snow in NYC in march 2025?", snow.Question, "sub title already contained")
	assert.Equal(t, 50.0, snow.Probability)
	assert.Equal(t, 0.1, snow.Volume)
}

func TestProbabilityClamp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /trade-api/v2/markets/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("ticker") {
		case "HIGH":
			_, _ = w.Write([]byte(`{"market":{"ticker":"HIGH","title":"High","last_price":100}}`))
		case "LOW":
			_, _ = w.Write([]byte(`{"market":{"ticker":"LOW-X","title":"Low","yes_bid":0,"yes_ask":1}}`))
		default:
			http.NotFound(w, r)
		}
	})
	a := newAdapter(t, mux, kalshi.Config{})

	m, err := a.GetMarket(context.Background(), "HIGH")
	require.NoError(t, err)
	assert.Equal(t, 99.0, m.Probability)

	m, err = a.GetMarket(context.Background(), "LOW")
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Probability)
	assert.Equal(t, "https://kalshi.com/markets/LOW", m.URL)

	_, err = a.GetMarket(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory(t *testing.T) {
	now := time.Now().Unix()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /trade-api/v2/markets/KXFED/history", func(w http.ResponseWriter, r *http.Request) {
		body := `{"history":[
		  {"ts":` + itoa(now-3600) + `,"yes_price":41},
		  {"ts":` + itoa(now-7200) + `,"yes_price":40},
		  {"ts":` + itoa(now-10*86400) + `,"yes_price":10}
		]}`
		_, _ = w.Write([]byte(body))
	})
	a := newAdapter(t, mux, kalshi.Config{})

	points, err := a.History(context.Background(), "KXFED", domain.Range24h)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 40.0, points[0].Value)
	assert.Equal(t, 41.0, points[1].Value)
}

func TestPositionsRequireCredentials(t *testing.T) {
	a, err := kalshi.New(kalshi.Config{}, restclient.Options{})
	require.NoError(t, err)
	assert.False(t, a.HasCredentials())

	_, err = a.Positions(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := kalshi.New(kalshi.Config{PrivateKeyPEM: []byte("not a key")}, restclient.Options{})
	assert.Error(t, err)
}

func TestPositionsSigned(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /trade-api/v2/portfolio/positions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("KALSHI-ACCESS-KEY"))
		ts := r.Header.Get("KALSHI-ACCESS-TIMESTAMP")
		sig, err := base64.StdEncoding.DecodeString(r.Header.Get("KALSHI-ACCESS-SIGNATURE"))
		assert.NoError(t, err)
		hash := sha256.Sum256([]byte(ts + "GET" + "/trade-api/v2/portfolio/positions"))
		assert.NoError(t, rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, hash[:], sig,
			&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}))

		_, _ = w.Write([]byte(`{"market_positions":[
		  {"ticker":"KXFED-25MAR-T4.25","position":10,"market_exposure":300},
		  {"ticker":"KXSNOW-A","position":-4,"market_exposure":200},
		  {"ticker":"FLAT","position":0}
		]}`))
	})
	mux.HandleFunc("GET /trade-api/v2/markets/KXFED-25MAR-T4.25", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"market":{"ticker":"KXFED-25MAR-T4.25","title":"Fed above 4.25%","last_price":45,"status":"open"}}`))
	})
	mux.HandleFunc("GET /trade-api/v2/markets/KXSNOW-A", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"market":{"ticker":"KXSNOW-A","title":"Snow","last_price":40,"status":"settled"}}`))
	})
	a := newAdapter(t, mux, kalshi.Config{APIKeyID: "key-1", PrivateKeyPEM: keyPEM})
	require.True(t, a.HasCredentials())

	positions, err := a.Positions(context.Background(), "ignored")
	require.NoError(t, err)
	require.Len(t, positions, 2)

	yes := positions[0]
	assert.Equal(t, "kalshi-KXFED-25MAR-T4.25-yes", yes.ID)
	assert.Equal(t, "YES", yes.Outcome)
	assert.InDelta(t, 30, yes.EntryPrice, 1e-9)
	assert.InDelta(t, 45, yes.CurrentPrice, 1e-9)
	assert.InDelta(t, 3.0, yes.InvestmentAmount, 1e-9)
	assert.InDelta(t, 4.5, yes.CurrentValue, 1e-9)
	assert.InDelta(t, 50, yes.ProfitLossPercent, 1e-9)
	assert.True(t, yes.IsActive)
	assert.Equal(t, "https://kalshi.com/markets/KXFED", yes.MarketURL)

	no := positions[1]
	assert.Equal(t, "NO", no.Outcome)
	assert.InDelta(t, 50, no.EntryPrice, 1e-9)
	assert.InDelta(t, 60, no.CurrentPrice, 1e-9)
	assert.False(t, no.IsActive)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
