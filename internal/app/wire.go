package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	s3blob "github.com/alanyoungcy/predicthub/internal/blob/s3"
	"github.com/alanyoungcy/predicthub/internal/cache/memory"
	"github.com/alanyoungcy/predicthub/internal/cache/redis"
	"github.com/alanyoungcy/predicthub/internal/config"
	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/metrics"
	"github.com/alanyoungcy/predicthub/internal/notify"
	"github.com/alanyoungcy/predicthub/internal/platform/kalshi"
	"github.com/alanyoungcy/predicthub/internal/platform/manifold"
	"github.com/alanyoungcy/predicthub/internal/platform/metaculus"
	"github.com/alanyoungcy/predicthub/internal/platform/polymarket"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
	storemem "github.com/alanyoungcy/predicthub/internal/store/memory"
	"github.com/alanyoungcy/predicthub/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application modes
// need to operate. It is constructed by Wire and torn down by the returned
// cleanup function. Optional backends fall back to in-process
// implementations, so every interface field is non-nil except Archiver and
// BlobReader, which exist only when archiving is enabled.
type Dependencies struct {
	// Platforms
	Sources   []domain.MarketSource
	Lookups   map[domain.Platform]domain.MarketLookup
	Histories map[domain.Platform]domain.HistorySource
	Positions map[domain.Platform]domain.PositionSource

	// Stores
	Snapshots domain.PriceSnapshotStore
	Alerts    domain.AlertStore
	Watchlist domain.WatchlistStore

	// Caches
	MarketCache domain.MarketCache
	RateLimiter domain.RateLimiter
	// LockManager is nil without Redis; a single replica needs no lock.
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// Blob storage
	BlobReader domain.BlobReader
	Archiver   domain.Archiver

	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	deps := &Dependencies{}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	// --- Platforms ---
	if err := wirePlatforms(cfg, deps, logger); err != nil {
		return fail(fmt.Errorf("wire: platforms: %w", err))
	}

	// --- PostgreSQL (optional) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: postgres: %w", err))
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			applied, err := pgClient.RunMigrations(ctx)
			if err != nil {
				return fail(fmt.Errorf("wire: postgres migrations: %w", err))
			}
			if len(applied) > 0 {
				logger.Info("wire: postgres migrations applied", slog.Any("files", applied))
			}
		}

		pool := pgClient.Pool()
		deps.Snapshots = postgres.NewPriceSnapshotStore(pool)
		deps.Alerts = postgres.NewAlertStore(pool)
		deps.Watchlist = postgres.NewWatchlistStore(pool)
		logger.Info("wire: postgres stores enabled")
	} else {
		deps.Snapshots = storemem.NewPriceSnapshotStore(storemem.DefaultSnapshotsPerMarket)
		deps.Alerts = storemem.NewAlertStore()
		deps.Watchlist = storemem.NewWatchlistStore()
	}

	// --- Redis (optional) ---
	embedTTL := cfg.Embed.CacheTTL.Duration
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: redis: %w", err))
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.MarketCache = redis.NewMarketCache(redisClient, embedTTL)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.LockManager = redis.NewLockManager(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
		logger.Info("wire: redis cache, limiter, lock and bus enabled")
	} else {
		cache := memory.NewMarketCache(embedTTL)
		closers = append(closers, cache.Close)
		deps.MarketCache = cache
		deps.RateLimiter = memory.NewRateLimiter()
		deps.SignalBus = memory.NewSignalBus()
	}

	// --- S3 archive (optional) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: s3: %w", err))
		}
		if err := s3Client.Health(ctx); err != nil {
			logger.Warn("wire: s3 bucket not reachable yet", slog.String("error", err.Error()))
		}
		reader := s3blob.NewReader(s3Client)
		deps.BlobReader = reader
		deps.Archiver = s3blob.NewSnapshotArchiver(s3blob.NewWriter(s3Client), reader, deps.Snapshots, cfg.Archive.Prune)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if cfg.Notify.WebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.Notify.WebhookURL, cfg.Notify.WebhookSecret))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	return deps, cleanup, nil
}

// clientOptions builds per-platform HTTP client options. Each call gets its
// own limiter, so one slow platform never starves another.
func clientOptions(cfg config.HTTPClientConfig, logger *slog.Logger, platform string) restclient.Options {
	return restclient.Options{
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.Timeout.Duration,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		MaxRetries:    cfg.MaxRetries,
		RetryWait:     cfg.RetryWait.Duration,
		Logger:        logger.With(slog.String("platform", platform)),
	}
}

// wirePlatforms builds the enabled adapters in aggregation order.
func wirePlatforms(cfg *config.Config, deps *Dependencies, logger *slog.Logger) error {
	deps.Lookups = make(map[domain.Platform]domain.MarketLookup)
	deps.Histories = make(map[domain.Platform]domain.HistorySource)
	deps.Positions = make(map[domain.Platform]domain.PositionSource)

	register := func(a domain.PlatformAdapter, withPositions bool) {
		p := a.Platform()
		deps.Sources = append(deps.Sources, a)
		deps.Lookups[p] = a
		deps.Histories[p] = a
		if withPositions {
			deps.Positions[p] = a
		}
	}

	if cfg.Polymarket.Enabled {
		register(polymarket.New(polymarket.Config{
			GammaURL: cfg.Polymarket.GammaHost,
			ClobURL:  cfg.Polymarket.ClobHost,
			DataURL:  cfg.Polymarket.DataHost,
		}, clientOptions(cfg.HTTPClient, logger, "polymarket")), true)
	}

	if cfg.Kalshi.Enabled {
		var pem []byte
		if cfg.Kalshi.RSAPrivateKeyPath != "" {
			b, err := os.ReadFile(cfg.Kalshi.RSAPrivateKeyPath)
			if err != nil {
				return fmt.Errorf("kalshi: read private key: %w", err)
			}
			pem = b
		}
		a, err := kalshi.New(kalshi.Config{
			BaseURL:       cfg.Kalshi.BaseURL,
			APIKeyID:      cfg.Kalshi.APIKey,
			PrivateKeyPEM: pem,
			Concurrency:   cfg.Kalshi.Concurrency,
		}, clientOptions(cfg.HTTPClient, logger, "kalshi"))
		if err != nil {
			return err
		}
		register(a, a.HasCredentials())
	}

	if cfg.Manifold.Enabled {
		register(manifold.New(cfg.Manifold.BaseURL, clientOptions(cfg.HTTPClient, logger, "manifold")), true)
	}

	if cfg.Metaculus.Enabled {
		a := metaculus.New(cfg.Metaculus.BaseURL, clientOptions(cfg.HTTPClient, logger, "metaculus"))
		deps.Sources = append(deps.Sources, a)
		deps.Lookups[domain.PlatformMetaculus] = a
		deps.Histories[domain.PlatformMetaculus] = a
	}
	return nil
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second
