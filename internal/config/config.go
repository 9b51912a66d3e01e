// Package config reads storefront settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/pixelwick/internal/logger"
	"github.com/fjod/pixelwick/internal/store"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	CORSAllowedOrigins []string

	Store       store.Config
	SeedCatalog bool
	CatalogFile string

	KafkaBrokers []string
	KafkaTopic   string

	Log logger.Config
}

// Load reads .env files (when present) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	dataDir := getEnv("DATA_DIR", "data")
	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "3000"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Store: store.Config{
			Driver:     getEnv("STORE_DRIVER", store.DriverFile),
			DataDir:    dataDir,
			SQLitePath: getEnv("SQLITE_PATH", dataDir+"/storefront.db"),
		},
		CatalogFile:  os.Getenv("CATALOG_FILE"),
		KafkaBrokers: getEnvList("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-events"),
		Log: logger.Config{
			File: os.Getenv("LOG_FILE"),
		},
	}

	var err error
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxRequestBodySize, err = getEnvInt64("MAX_REQUEST_BODY_BYTES", 1<<20); err != nil {
		return nil, err
	}
	if cfg.SeedCatalog, err = getEnvBool("SEED_CATALOG", true); err != nil {
		return nil, err
	}
	if cfg.Log.Console, err = getEnvBool("LOG_CONSOLE", false); err != nil {
		return nil, err
	}
	if cfg.Log.Debug, err = getEnvBool("LOG_DEBUG", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
