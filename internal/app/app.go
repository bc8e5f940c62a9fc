// Package app provides the top-level application lifecycle for predicthub.
// It wires together all dependencies (platform adapters, stores, caches,
// blob storage, services and notifications) and starts the goroutines of
// the configured run mode.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alanyoungcy/predicthub/internal/config"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	stdout  io.Writer
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
		stdout: os.Stdout,
	}
}

// Run is the main entry point. It wires all dependencies, selects the
// operating mode, starts the corresponding goroutines, and blocks until the
// context is cancelled. Close runs the registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
		slog.Any("platforms", a.cfg.EnabledPlatforms()),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	return a.RunWith(ctx, deps, cleanup)
}

// RunWith runs the configured mode over already-wired dependencies.
// cleanup may be nil.
func (a *App) RunWith(ctx context.Context, deps *Dependencies, cleanup func()) error {
	if cleanup != nil {
		a.closers = append(a.closers, cleanup)
	}

	switch strings.ToLower(a.cfg.Mode) {
	case config.ModeServe:
		return a.ServeMode(ctx, deps)
	case config.ModePoll:
		return a.PollMode(ctx, deps)
	case config.ModeOnce:
		return a.OnceMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
