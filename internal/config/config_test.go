package config_test

import (
	"log/slog"
	"testing"

	"github.com/pkordes/railbook/internal/config"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so a developer's shell or .env
// cannot leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "CORS_ORIGINS", "STORE_DRIVER", "DATA_FILE",
		"DATABASE_URL", "SEED_FILE", "AMQP_URL", "MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that every variable falls back to its default
// and that the file store needs no database.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, config.DriverFile, cfg.StoreDriver)
	require.Equal(t, "train_data.json", cfg.DataFile)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.SeedFile)
	require.Empty(t, cfg.AMQPURL)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/railbook")
	t.Setenv("DATA_FILE", "/var/lib/railbook/ledger.json")
	t.Setenv("SEED_FILE", "/etc/railbook/seed.yaml")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("MAX_BODY_BYTES", "4096")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	require.Equal(t, "postgres://user:pass@db:5432/railbook", cfg.DatabaseURL)
	require.Equal(t, "/var/lib/railbook/ledger.json", cfg.DataFile)
	require.Equal(t, "/etc/railbook/seed.yaml", cfg.SeedFile)
	require.Equal(t, "amqp://guest:guest@mq:5672/", cfg.AMQPURL)
	require.Equal(t, int64(4096), cfg.MaxBodyBytes)
}

// TestLoad_postgresRequiresDatabaseURL verifies that the error names the
// missing variable.
func TestLoad_postgresRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_unknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := config.Load()

	require.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoad_badMaxBodyBytes(t *testing.T) {
	clearEnv(t)

	for _, v := range []string{"lots", "0", "-5"} {
		t.Setenv("MAX_BODY_BYTES", v)

		_, err := config.Load()

		require.ErrorContains(t, err, "MAX_BODY_BYTES", "value %q", v)
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, config.Config{LogLevel: "debug"}.SlogLevel())
	require.Equal(t, slog.LevelWarn, config.Config{LogLevel: "WARN"}.SlogLevel())
	require.Equal(t, slog.LevelInfo, config.Config{LogLevel: "chatty"}.SlogLevel())
}
