package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "UTC", cfg.Gamification.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.Gamification.ProgressTTL)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9100
database:
  driver: sqlite
  sqlite_path: /tmp/praise.db
gamification:
  timezone: Asia/Tokyo
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:/tmp/praise.db?_foreign_keys=on", cfg.Database.DSN())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)

	loc, err := cfg.Gamification.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GAMIFICATION_TIMEZONE", "Mars/Olympus_Mons")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "pw",
		Name:     "todo",
	}
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=todo sslmode=disable", d.DSN())
}
