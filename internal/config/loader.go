package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PREDICTHUB_* environment variable overrides, and
// returns the final Config. A missing file is not an error; an empty path
// skips the file. The returned Config has NOT been validated; the caller
// should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PREDICTHUB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Top-level ──
	setStr(&cfg.Mode, "PREDICTHUB_MODE")
	setStr(&cfg.LogLevel, "PREDICTHUB_LOG_LEVEL")

	// ── Server ──
	setInt(&cfg.Server.Port, "PREDICTHUB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PREDICTHUB_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimit, "PREDICTHUB_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "PREDICTHUB_SERVER_RATE_WINDOW")

	// ── Poller ──
	setDuration(&cfg.Poller.Interval, "PREDICTHUB_POLLER_INTERVAL")
	setDuration(&cfg.Poller.LockTTL, "PREDICTHUB_POLLER_LOCK_TTL")
	setDuration(&cfg.Poller.FetchTimeout, "PREDICTHUB_POLLER_FETCH_TIMEOUT")

	// ── Matching ──
	setFloat64(&cfg.Matching.GroupThreshold, "PREDICTHUB_MATCHING_GROUP_THRESHOLD")
	setFloat64(&cfg.Matching.ArbitrageMinDiff, "PREDICTHUB_MATCHING_ARBITRAGE_MIN_DIFF")
	setBool(&cfg.Matching.DedupOpportunities, "PREDICTHUB_MATCHING_DEDUP_OPPORTUNITIES")

	// ── Platforms ──
	setBool(&cfg.Polymarket.Enabled, "PREDICTHUB_POLYMARKET_ENABLED")
	setStr(&cfg.Polymarket.GammaHost, "PREDICTHUB_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "PREDICTHUB_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.DataHost, "PREDICTHUB_POLYMARKET_DATA_HOST")
	setBool(&cfg.Kalshi.Enabled, "PREDICTHUB_KALSHI_ENABLED")
	setStr(&cfg.Kalshi.BaseURL, "PREDICTHUB_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.APIKey, "PREDICTHUB_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RSAPrivateKeyPath, "PREDICTHUB_KALSHI_RSA_PRIVATE_KEY_PATH")
	setBool(&cfg.Manifold.Enabled, "PREDICTHUB_MANIFOLD_ENABLED")
	setStr(&cfg.Manifold.BaseURL, "PREDICTHUB_MANIFOLD_BASE_URL")
	setBool(&cfg.Metaculus.Enabled, "PREDICTHUB_METACULUS_ENABLED")
	setStr(&cfg.Metaculus.BaseURL, "PREDICTHUB_METACULUS_BASE_URL")

	// ── HTTP client ──
	setDuration(&cfg.HTTPClient.Timeout, "PREDICTHUB_HTTP_CLIENT_TIMEOUT")
	setFloat64(&cfg.HTTPClient.RatePerSecond, "PREDICTHUB_HTTP_CLIENT_RATE_PER_SECOND")
	setInt(&cfg.HTTPClient.Burst, "PREDICTHUB_HTTP_CLIENT_BURST")
	setInt(&cfg.HTTPClient.MaxRetries, "PREDICTHUB_HTTP_CLIENT_MAX_RETRIES")

	setDuration(&cfg.Embed.CacheTTL, "PREDICTHUB_EMBED_CACHE_TTL")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PREDICTHUB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PREDICTHUB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PREDICTHUB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PREDICTHUB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PREDICTHUB_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "PREDICTHUB_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "PREDICTHUB_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "PREDICTHUB_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // platform-provided alias
	setStr(&cfg.Postgres.Host, "PREDICTHUB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PREDICTHUB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PREDICTHUB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PREDICTHUB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PREDICTHUB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PREDICTHUB_POSTGRES_SSL_MODE")
	setBool(&cfg.Postgres.RunMigrations, "PREDICTHUB_POSTGRES_RUN_MIGRATIONS")

	// ── S3 / archive ──
	setStr(&cfg.S3.Endpoint, "PREDICTHUB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PREDICTHUB_S3_REGION")
	setStr(&cfg.S3.Bucket, "PREDICTHUB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PREDICTHUB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PREDICTHUB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PREDICTHUB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PREDICTHUB_S3_FORCE_PATH_STYLE")
	setBool(&cfg.Archive.Enabled, "PREDICTHUB_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "PREDICTHUB_ARCHIVE_RETENTION_DAYS")
	setStr(&cfg.Archive.Cron, "PREDICTHUB_ARCHIVE_CRON")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PREDICTHUB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PREDICTHUB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PREDICTHUB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStr(&cfg.Notify.WebhookURL, "PREDICTHUB_NOTIFY_WEBHOOK_URL")
	setStr(&cfg.Notify.WebhookSecret, "PREDICTHUB_NOTIFY_WEBHOOK_SECRET")
	setStringSlice(&cfg.Notify.Events, "PREDICTHUB_NOTIFY_EVENTS")

	setBool(&cfg.Metrics.Enabled, "PREDICTHUB_METRICS_ENABLED")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
