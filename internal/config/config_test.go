package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.4, cfg.Matching.GroupThreshold)
	assert.Equal(t, 3.0, cfg.Matching.ArbitrageMinDiff)
	assert.Equal(t, 60*time.Second, cfg.Poller.Interval.Duration)
	assert.Equal(t, 60*time.Second, cfg.Embed.CacheTTL.Duration)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Postgres.Enabled)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, []string{"polymarket", "kalshi", "manifold", "metaculus"}, cfg.EnabledPlatforms())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predicthub.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "poll"

[poller]
interval = "30s"

[matching]
group_threshold = 0.5
dedup_opportunities = true

[metaculus]
enabled = false

[redis]
enabled = true
addr = "redis:6379"
`), 0o600))

	t.Setenv("PREDICTHUB_LOG_LEVEL", "debug")
	t.Setenv("PREDICTHUB_REDIS_PASSWORD", "hunter2")
	t.Setenv("PREDICTHUB_SERVER_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("PREDICTHUB_HTTP_CLIENT_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModePoll, cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Poller.Interval.Duration)
	assert.Equal(t, 0.5, cfg.Matching.GroupThreshold)
	assert.True(t, cfg.Matching.DedupOpportunities)
	assert.Equal(t, []string{"polymarket", "kalshi", "manifold"}, cfg.EnabledPlatforms())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.HTTPClient.Timeout.Duration)
	// untouched sections keep defaults
	assert.Equal(t, 3.0, cfg.Matching.ArbitrageMinDiff)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[poller]
interval = "soon"`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"
	cfg.Matching.GroupThreshold = 0
	cfg.Polymarket.Enabled = false
	cfg.Kalshi.Enabled = false
	cfg.Manifold.Enabled = false
	cfg.Metaculus.Enabled = false
	cfg.Archive.Enabled = true
	cfg.Archive.Cron = "daily"
	cfg.Notify.TelegramToken = "tok"
	cfg.Notify.Events = []string{"order_filled"}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		`unknown mode "trade"`,
		"group_threshold",
		"at least one of",
		"cron must have 5 fields",
		"telegram_token and telegram_chat_id",
		`unknown event "order_filled"`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Kalshi.APIKey = "key"
	cfg.Postgres.Password = "pw"
	cfg.S3.SecretKey = "secret"
	cfg.Notify.DiscordWebhookURL = "https://discord.example/hook"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Kalshi.APIKey)
	assert.Equal(t, "***", out.Postgres.Password)
	assert.Equal(t, "***", out.S3.SecretKey)
	assert.Equal(t, "***", out.Notify.DiscordWebhookURL)
	assert.Empty(t, out.Redis.Password, "empty secrets stay empty")

	out.Server.CORSOrigins[0] = "mutated"
	assert.Equal(t, "http://localhost:3000", cfg.Server.CORSOrigins[0])
	assert.Equal(t, "key", cfg.Kalshi.APIKey)
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	def := Defaults()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Poller, cfg.Poller)
	assert.Equal(t, def.Matching, cfg.Matching)
	assert.Equal(t, def.HTTPClient, cfg.HTTPClient)
	assert.Equal(t, def.Archive, cfg.Archive)
	assert.Equal(t, def.EnabledPlatforms(), cfg.EnabledPlatforms())
}
