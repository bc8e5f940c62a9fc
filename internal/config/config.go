// Package config defines the top-level configuration for predicthub and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PREDICTHUB_* environment variables.
type Config struct {
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
	Server     ServerConfig     `toml:"server"`
	Poller     PollerConfig     `toml:"poller"`
	Matching   MatchingConfig   `toml:"matching"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Manifold   ManifoldConfig   `toml:"manifold"`
	Metaculus  MetaculusConfig  `toml:"metaculus"`
	HTTPClient HTTPClientConfig `toml:"http_client"`
	Embed      EmbedConfig      `toml:"embed"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Archive    ArchiveConfig    `toml:"archive"`
	Notify     NotifyConfig     `toml:"notify"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimit is requests per RateWindow per client IP; 0 disables it.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// PollerConfig controls the refresh loop.
type PollerConfig struct {
	Interval duration `toml:"interval"`
	// LockTTL bounds how long one replica holds the refresh lock when
	// Redis is enabled.
	LockTTL      duration `toml:"lock_ttl"`
	FetchTimeout duration `toml:"fetch_timeout"`
}

// MatchingConfig tunes event grouping and arbitrage detection.
type MatchingConfig struct {
	GroupThreshold     float64 `toml:"group_threshold"`
	ArbitrageMinDiff   float64 `toml:"arbitrage_min_diff"`
	DedupOpportunities bool    `toml:"dedup_opportunities"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	Enabled   bool   `toml:"enabled"`
	GammaHost string `toml:"gamma_host"`
	ClobHost  string `toml:"clob_host"`
	DataHost  string `toml:"data_host"`
}

// KalshiConfig holds Kalshi API settings and optional portfolio
// credentials.
type KalshiConfig struct {
	Enabled           bool   `toml:"enabled"`
	BaseURL           string `toml:"base_url"`
	APIKey            string `toml:"api_key"`
	RSAPrivateKeyPath string `toml:"rsa_private_key_path"`
	Concurrency       int    `toml:"concurrency"`
}

type ManifoldConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

type MetaculusConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// HTTPClientConfig is shared by every platform client; each platform gets
// its own limiter built from these values.
type HTTPClientConfig struct {
	Timeout       duration `toml:"timeout"`
	RatePerSecond float64  `toml:"rate_per_second"`
	Burst         int      `toml:"burst"`
	MaxRetries    int      `toml:"max_retries"`
	RetryWait     duration `toml:"retry_wait"`
	UserAgent     string   `toml:"user_agent"`
}

// EmbedConfig controls the embed market cache.
type EmbedConfig struct {
	CacheTTL duration `toml:"cache_ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	KeyPrefix  string `toml:"key_prefix"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig schedules moving old price snapshots to S3.
type ArchiveConfig struct {
	Enabled       bool   `toml:"enabled"`
	RetentionDays int    `toml:"retention_days"`
	Cron          string `toml:"cron"`
	// Prune deletes archived snapshots from the live store.
	Prune bool `toml:"prune"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	WebhookURL        string   `toml:"webhook_url"`
	WebhookSecret     string   `toml:"webhook_secret"`
	Events            []string `toml:"events"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// Every external backend is disabled; the service then runs in memory.
func Defaults() Config {
	return Config{
		Mode:     ModeServe,
		LogLevel: "info",
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   120,
			RateWindow:  duration{time.Minute},
		},
		Poller: PollerConfig{
			Interval:     duration{60 * time.Second},
			LockTTL:      duration{2 * time.Minute},
			FetchTimeout: duration{30 * time.Second},
		},
		Matching: MatchingConfig{
			GroupThreshold:   0.4,
			ArbitrageMinDiff: 3,
		},
		Polymarket: PolymarketConfig{
			Enabled:   true,
			GammaHost: "https://gamma-api.polymarket.com",
			ClobHost:  "https://clob.polymarket.com",
			DataHost:  "https://data-api.polymarket.com",
		},
		Kalshi: KalshiConfig{
			Enabled:     true,
			BaseURL:     "https://api.elections.kalshi.com/trade-api/v2",
			Concurrency: 8,
		},
		Manifold: ManifoldConfig{
			Enabled: true,
			BaseURL: "https://api.manifold.markets/v0",
		},
		Metaculus: MetaculusConfig{
			Enabled: true,
			BaseURL: "https://www.metaculus.com/api2",
		},
		HTTPClient: HTTPClientConfig{
			Timeout:       duration{15 * time.Second},
			RatePerSecond: 5,
			Burst:         10,
			MaxRetries:    3,
			RetryWait:     duration{500 * time.Millisecond},
			UserAgent:     "PredictHub/1.0",
		},
		Embed: EmbedConfig{
			CacheTTL: duration{60 * time.Second},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
			KeyPrefix:  "predicthub:",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "predicthub",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Region:         "us-east-1",
			Bucket:         "predicthub-archive",
			ForcePathStyle: true,
		},
		Archive: ArchiveConfig{
			RetentionDays: 30,
			Cron:          "0 3 * * *",
			Prune:         true,
		},
		Notify: NotifyConfig{
			Events: []string{"alert_triggered", "arbitrage_found", "platform_error"},
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Run modes.
const (
	ModeServe = "serve"
	ModePoll  = "poll"
	ModeOnce  = "once"
)

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	ModeServe: true,
	ModePoll:  true,
	ModeOnce:  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validEvents = map[string]bool{
	"alert_triggered": true,
	"arbitrage_found": true,
	"platform_error":  true,
}

// EnabledPlatforms lists the enabled platforms in aggregation order.
func (c *Config) EnabledPlatforms() []string {
	var out []string
	if c.Polymarket.Enabled {
		out = append(out, "polymarket")
	}
	if c.Kalshi.Enabled {
		out = append(out, "kalshi")
	}
	if c.Manifold.Enabled {
		out = append(out, "manifold")
	}
	if c.Metaculus.Enabled {
		out = append(out, "metaculus")
	}
	return out
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, poll, once)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Server
	if strings.EqualFold(c.Mode, ModeServe) {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
		}
	}

	// Poller
	if c.Poller.Interval.Duration <= 0 {
		errs = append(errs, "poller: interval must be > 0")
	}
	if c.Poller.LockTTL.Duration <= 0 {
		errs = append(errs, "poller: lock_ttl must be > 0")
	}

	// Matching
	if c.Matching.GroupThreshold <= 0 || c.Matching.GroupThreshold > 1 {
		errs = append(errs, fmt.Sprintf("matching: group_threshold must be in (0, 1], got %g", c.Matching.GroupThreshold))
	}
	if c.Matching.ArbitrageMinDiff < 0 || c.Matching.ArbitrageMinDiff > 100 {
		errs = append(errs, fmt.Sprintf("matching: arbitrage_min_diff must be in [0, 100], got %g", c.Matching.ArbitrageMinDiff))
	}

	// Platforms
	if len(c.EnabledPlatforms()) == 0 {
		errs = append(errs, "platforms: at least one of polymarket, kalshi, manifold, metaculus must be enabled")
	}
	if c.Kalshi.RSAPrivateKeyPath != "" && c.Kalshi.APIKey == "" {
		errs = append(errs, "kalshi: api_key is required when rsa_private_key_path is set")
	}

	// HTTP client
	if c.HTTPClient.RatePerSecond < 0 {
		errs = append(errs, "http_client: rate_per_second must be >= 0")
	}
	if c.HTTPClient.MaxRetries < 0 {
		errs = append(errs, "http_client: max_retries must be >= 0")
	}

	if c.Embed.CacheTTL.Duration <= 0 {
		errs = append(errs, "embed: cache_ttl must be > 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 || c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must be between 0 and pool_max_conns")
		}
	}

	// Archive
	if c.Archive.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if len(strings.Fields(c.Archive.Cron)) != 5 {
			errs = append(errs, fmt.Sprintf("archive: cron must have 5 fields, got %q", c.Archive.Cron))
		}
	}

	// Notify
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}
	for _, e := range c.Notify.Events {
		if !validEvents[e] {
			errs = append(errs, fmt.Sprintf("notify: unknown event %q", e))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
