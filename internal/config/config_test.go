package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/pixelwick/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodySize)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, store.DriverFile, cfg.Store.Driver)
	assert.Equal(t, "data", cfg.Store.DataDir)
	assert.Equal(t, "data/storefront.db", cfg.Store.SQLitePath)
	assert.True(t, cfg.SeedCatalog)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "storefront-events", cfg.KafkaTopic)
	assert.False(t, cfg.Log.Debug)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATA_DIR", "/var/lib/pixelwick")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("SEED_CATALOG", "false")
	t.Setenv("LOG_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, store.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/var/lib/pixelwick/storefront.db", cfg.Store.SQLitePath)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.SeedCatalog)
	assert.True(t, cfg.Log.Debug)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KAFKA_TOPIC=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("KAFKA_TOPIC") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.KafkaTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"REQUEST_TIMEOUT", "soon"},
		{"MAX_REQUEST_BODY_BYTES", "big"},
		{"SEED_CATALOG", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
