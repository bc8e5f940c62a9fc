// Package server hosts the HTTP API and WebSocket endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/metrics"
	"github.com/alanyoungcy/predicthub/internal/server/handler"
	"github.com/alanyoungcy/predicthub/internal/server/middleware"
	"github.com/alanyoungcy/predicthub/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	// RateLimit is the number of requests a client IP may make per
	// RateWindow. Zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Status    *handler.StatusHandler
	Markets   *handler.MarketHandler
	Groups    *handler.GroupHandler
	Arb       *handler.ArbHandler
	History   *handler.HistoryHandler
	Embed     *handler.EmbedHandler
	Alerts    *handler.AlertHandler
	Watchlist *handler.WatchlistHandler
	Portfolio *handler.PortfolioHandler
	Refresh   *handler.RefreshHandler
	// Archives is nil unless snapshot archiving is enabled.
	Archives *handler.ArchiveHandler
}

// Deps are the optional collaborators of the middleware chain.
type Deps struct {
	Limiter domain.RateLimiter
	Metrics *metrics.Metrics
	Hub     *ws.Hub
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
func NewServer(cfg Config, handlers Handlers, deps Deps, logger *slog.Logger) *Server {
	logger = logger.With(slog.String("component", "server"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewHandler(cfg, handlers, deps, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{httpServer: srv, logger: logger}
}

// NewHandler builds the routed handler wrapped in the middleware chain:
// CORS, logging, metrics, then rate limiting.
func NewHandler(cfg Config, handlers Handlers, deps Deps, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)

	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("GET /api/groups", handlers.Groups.ListGroups)
	mux.HandleFunc("GET /api/groups/ungrouped", handlers.Groups.ListUngrouped)
	mux.HandleFunc("GET /api/arbitrage", handlers.Arb.ListOpportunities)
	mux.HandleFunc("GET /api/history/{id}", handlers.History.GetHistory)

	mux.HandleFunc("GET /api/embed/{id}", handlers.Embed.GetEmbed)
	mux.HandleFunc("OPTIONS /api/embed/{id}", handlers.Embed.Preflight)

	mux.HandleFunc("GET /api/alerts", handlers.Alerts.ListAlerts)
	mux.HandleFunc("POST /api/alerts", handlers.Alerts.CreateAlert)
	mux.HandleFunc("DELETE /api/alerts/{id}", handlers.Alerts.DeleteAlert)

	mux.HandleFunc("GET /api/watchlist", handlers.Watchlist.ListWatchlist)
	mux.HandleFunc("DELETE /api/watchlist", handlers.Watchlist.ClearWatchlist)
	mux.HandleFunc("PUT /api/watchlist/{id}", handlers.Watchlist.AddToWatchlist)
	mux.HandleFunc("DELETE /api/watchlist/{id}", handlers.Watchlist.RemoveFromWatchlist)
	mux.HandleFunc("POST /api/watchlist/{id}/toggle", handlers.Watchlist.ToggleWatchlist)

	mux.HandleFunc("GET /api/portfolio/{platform}", handlers.Portfolio.GetPortfolio)
	mux.HandleFunc("POST /api/refresh", handlers.Refresh.TriggerRefresh)

	if handlers.Archives != nil {
		mux.HandleFunc("GET /api/archives", handlers.Archives.ListArchives)
		mux.HandleFunc("GET /api/archives/{path...}", handlers.Archives.GetArchive)
	}
	if deps.Hub != nil {
		mux.HandleFunc("GET /ws", deps.Hub.HandleWS)
	}
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	var h http.Handler = mux
	if deps.Limiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(deps.Limiter, cfg.RateLimit, cfg.RateWindow, logger)(h)
	}
	h = middleware.Metrics(deps.Metrics)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins, "/api/embed/")(h)
	return h
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
