package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/hub?sslmode=disable",
		DSN(ClientConfig{User: "u", Password: "p", Host: "db", Database: "hub"}))
	assert.Equal(t, "postgres://u:p@db:6543/hub?sslmode=require",
		DSN(ClientConfig{User: "u", Password: "p", Host: "db", Port: 6543, Database: "hub", SSLMode: "require"}))
	assert.Equal(t, "postgres://explicit", DSN(ClientConfig{DSN: " postgres://explicit ", Host: "ignored"}))
}

func TestDSNEscapesCredentials(t *testing.T) {
	assert.Equal(t, "postgres://svc:p%40ss%2Fword@db:5432/hub?sslmode=disable",
		DSN(ClientConfig{User: "svc", Password: "p@ss/word", Host: "db", Database: "hub"}))
	assert.Equal(t, "postgres://svc@db:5432/hub?sslmode=disable",
		DSN(ClientConfig{User: "svc", Host: "db", Database: "hub"}))
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])

	data, err := migrationsFS.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	for _, table := range []string{"price_snapshots", "alerts", "watchlist"} {
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestPendingMigrations(t *testing.T) {
	all := []string{"001_init.sql", "002_index.sql", "003_views.sql"}
	assert.Equal(t, all, pendingMigrations(all, nil))
	assert.Equal(t, []string{"003_views.sql"}, pendingMigrations(all, []string{"002_index.sql", "001_init.sql"}))
	assert.Empty(t, pendingMigrations(all, all))
}
