package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch("kalshi", 200*time.Millisecond, 42, nil)
	m.ObserveFetch("kalshi", time.Second, 0, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("kalshi", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("kalshi", "error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.MarketsFetched.WithLabelValues("kalshi")), "failed fetch keeps last count")
}

func TestObserveRefreshAndCounters(t *testing.T) {
	m := New()
	m.ObserveRefresh(time.Second, 7, 3, 12.5)
	m.IncAlertsTriggered()
	m.AddSnapshots(10)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.Groups))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Opportunities))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.BestSpread))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsTriggered))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.SnapshotsStored))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("polymarket", time.Second, 1, nil)
		m.ObserveRefresh(time.Second, 1, 1, 1)
		m.IncAlertsTriggered()
		m.AddSnapshots(1)
		m.ObserveHTTP("GET", "/api/markets", 200, time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `predicthub_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
