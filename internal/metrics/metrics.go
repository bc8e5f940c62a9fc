// Package metrics exposes Prometheus instrumentation for aggregation runs
// and the HTTP API on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "predicthub"

// Metrics holds every collector the service records to.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal      *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	MarketsFetched  *prometheus.GaugeVec
	Groups          prometheus.Gauge
	Opportunities   prometheus.Gauge
	BestSpread      prometheus.Gauge
	RefreshDuration prometheus.Histogram
	AlertsTriggered prometheus.Counter
	SnapshotsStored prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them, plus the Go and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "platform_fetch_total",
			Help:      "Platform market fetches by outcome.",
		}, []string{"platform", "status"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "platform_fetch_duration_seconds",
			Help:      "Latency of a full market fetch per platform.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"platform"}),
		MarketsFetched: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "platform_markets",
			Help:      "Markets returned by the last fetch per platform.",
		}, []string{"platform"}),
		Groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_groups",
			Help:      "Cross-platform event groups in the current snapshot.",
		}),
		Opportunities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arbitrage_opportunities",
			Help:      "Arbitrage opportunities in the current snapshot.",
		}),
		BestSpread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arbitrage_best_spread_points",
			Help:      "Widest probability spread among current opportunities.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete aggregation refresh.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_triggered_total",
			Help:      "Price alerts that fired.",
		}),
		SnapshotsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_snapshots_stored_total",
			Help:      "Price snapshots written to the snapshot store.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FetchTotal, m.FetchDuration, m.MarketsFetched,
		m.Groups, m.Opportunities, m.BestSpread, m.RefreshDuration,
		m.AlertsTriggered, m.SnapshotsStored,
		m.HTTPRequests, m.HTTPDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch records one platform fetch. A nil receiver is a no-op so
// callers can run without instrumentation.
func (m *Metrics) ObserveFetch(platform string, d time.Duration, markets int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FetchTotal.WithLabelValues(platform, status).Inc()
	m.FetchDuration.WithLabelValues(platform).Observe(d.Seconds())
	if err == nil {
		m.MarketsFetched.WithLabelValues(platform).Set(float64(markets))
	}
}

// ObserveRefresh records the outcome of a complete refresh.
func (m *Metrics) ObserveRefresh(d time.Duration, groups, opportunities int, bestSpread float64) {
	if m == nil {
		return
	}
	m.RefreshDuration.Observe(d.Seconds())
	m.Groups.Set(float64(groups))
	m.Opportunities.Set(float64(opportunities))
	m.BestSpread.Set(bestSpread)
}

func (m *Metrics) IncAlertsTriggered() {
	if m == nil {
		return
	}
	m.AlertsTriggered.Inc()
}

func (m *Metrics) AddSnapshots(n int) {
	if m == nil {
		return
	}
	m.SnapshotsStored.Add(float64(n))
}

// ObserveHTTP records a served request. route is the mux pattern, never
// the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
