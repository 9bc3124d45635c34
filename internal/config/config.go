package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP listener
	ListenAddr string

	// Storage backend: "memory", "sqlite" or "postgres"
	StorageType string
	SQLitePath  string
	PostgresDSN string

	// Optional Elasticsearch reporting sink (disabled when URL is empty)
	ElasticURL      string
	ElasticUsername string
	ElasticPassword string

	// Policy file with the reward wheel, tier table and redemption catalog.
	// Empty means the built-in defaults.
	PolicyPath string

	// How often the ledger/balance reconciliation job runs
	ReconcileInterval time.Duration

	// Operator IDs granted host privileges
	HostOperators []string

	// Whether to expose the Prometheus /metrics endpoint
	MetricsEnabled bool

	// Environment
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// Get working directory for the default database path
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := &Config{
		ListenAddr:      getEnvWithDefault("LISTEN_ADDR", ":8080"),
		StorageType:     getEnvWithDefault("STORAGE_TYPE", "memory"),
		SQLitePath:      getEnvWithDefault("SQLITE_PATH", filepath.Join(wd, "data", "zeuscoins.db")),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		ElasticURL:      os.Getenv("ELASTICSEARCH_URL"),
		ElasticUsername: os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),
		PolicyPath:      os.Getenv("POLICY_PATH"),
		HostOperators:   splitList(os.Getenv("HOST_OPERATORS")),
		MetricsEnabled:  getEnvWithDefault("METRICS_ENABLED", "true") == "true",
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
	}

	minutes, err := strconv.Atoi(getEnvWithDefault("RECONCILE_INTERVAL_MINUTES", "15"))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("RECONCILE_INTERVAL_MINUTES must be a positive integer")
	}
	cfg.ReconcileInterval = time.Duration(minutes) * time.Minute

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks if all required configuration is present
func (c *Config) validate() error {
	switch c.StorageType {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_TYPE=sqlite")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q (want memory, sqlite or postgres)", c.StorageType)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// splitList parses a comma-separated environment value, dropping empties
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
