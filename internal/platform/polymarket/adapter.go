// Package polymarket adapts the Polymarket Gamma, CLOB and data APIs to the
// unified market model.
package polymarket

import (
	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

const (
	DefaultGammaURL = "https://gamma-api.polymarket.com"
	DefaultClobURL  = "https://clob.polymarket.com"
	DefaultDataURL  = "https://data-api.polymarket.com"

	siteURL = "https://polymarket.com"
)

// Config holds the API roots. Empty values use the production hosts.
type Config struct {
	GammaURL string
	ClobURL  string
	DataURL  string
}

// Adapter implements domain.PlatformAdapter for Polymarket.
type Adapter struct {
	gamma *restclient.Client
	clob  *restclient.Client
	data  *restclient.Client
}

var _ domain.PlatformAdapter = (*Adapter)(nil)

// New creates an Adapter. The three hosts share one rate limiter built from
// opts.
func New(cfg Config, opts restclient.Options) *Adapter {
	shared := restclient.New(opts)
	if opts.Limiter == nil {
		opts.Limiter = shared.Limiter()
	}

	with := func(base, fallback string) *restclient.Client {
		o := opts
		o.BaseURL = restclient.FirstNonEmpty(base, fallback)
		return restclient.New(o)
	}
	return &Adapter{
		gamma: with(cfg.GammaURL, DefaultGammaURL),
		clob:  with(cfg.ClobURL, DefaultClobURL),
		data:  with(cfg.DataURL, DefaultDataURL),
	}
}

// Platform returns domain.PlatformPolymarket.
func (a *Adapter) Platform() domain.Platform { return domain.PlatformPolymarket }
