package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/railbook/internal/app"
	"github.com/pkordes/railbook/internal/config"
	"github.com/pkordes/railbook/internal/domain"
)

func fileConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		LogLevel:    "error",
		StoreDriver: config.DriverFile,
		DataFile:    filepath.Join(t.TempDir(), "train_data.json"),
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := app.NewLogger(config.Config{LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
}

func TestOpen_FileStoreSeedsAndPersists(t *testing.T) {
	cfg := fileConfig(t)
	logger := app.NewLogger(cfg, &bytes.Buffer{})

	rt, err := app.Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer rt.Close()

	assert.Len(t, rt.Ledger.Trains(), 5)
	assert.Equal(t, 5, rt.Reports.Status().TotalTrains)
	_, err = os.Stat(cfg.DataFile)
	assert.NoError(t, err, "seeding writes the ledger document")
}

func TestOpen_SeedFileOverride(t *testing.T) {
	cfg := fileConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(cfg.SeedFile, []byte(`
version: 1
trains:
  - train_id: L1
    name: Lake Local
    source: Chicago
    destination: Milwaukee
    departure_time: "09:00"
    arrival_time: "10:30"
    total_seats: 40
    price: 15
`), 0o644))

	rt, err := app.Open(context.Background(), cfg, app.NewLogger(cfg, &bytes.Buffer{}))
	require.NoError(t, err)
	defer rt.Close()

	trains := rt.Ledger.Trains()
	require.Len(t, trains, 1)
	assert.Equal(t, "L1", trains[0].ID)
}

func TestOpen_BadSeedFile(t *testing.T) {
	cfg := fileConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := app.Open(context.Background(), cfg, app.NewLogger(cfg, &bytes.Buffer{}))

	assert.Error(t, err)
}

func TestOpen_ReopenKeepsBookings(t *testing.T) {
	cfg := fileConfig(t)
	logger := app.NewLogger(cfg, &bytes.Buffer{})
	ctx := context.Background()

	rt, err := app.Open(ctx, cfg, logger)
	require.NoError(t, err)
	b, err := rt.Ledger.Book(ctx, "T002", domain.NewPassenger("Bob", 41, "Male", "555-0101", "bob@example.com"), "2024-06-01")
	require.NoError(t, err)
	rt.Close()

	rt, err = app.Open(ctx, cfg, logger)
	require.NoError(t, err)
	defer rt.Close()

	got, ok := rt.Ledger.Booking(b.ID)
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", got.Passenger.Email)
}
