// Package config handles loading and parsing of FactVault configuration.
// Configuration can come from an INI file and/or environment variables.
// Environment variables take precedence, following the 12-factor app
// methodology.
//
// The configuration is organized into sections:
//   - [main]: HTTP server settings and logging
//   - [blob]: blob backend selection (mock or network) and its parameters
//   - [model]: record store class (Memory or Database) and driver settings
//   - [ratelimit]: per-tier hourly quota overrides
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds all application configuration organized by section.
type Config struct {
	Main      MainConfig
	Blob      BlobConfig
	Model     ModelConfig
	RateLimit RateLimitConfig
}

// MainConfig contains core application settings.
type MainConfig struct {
	// Name is the application title used in logs
	Name string

	// Host is the address to bind the HTTP server to (default: 0.0.0.0)
	Host string

	// Port is the HTTP server port (default: 8080)
	Port int

	// LogLevel is the logrus level name (debug, info, warn, error)
	LogLevel string
}

// BlobConfig defines the blob backend settings.
type BlobConfig struct {
	// Backend selects the storage backend: "mock" or "network"
	Backend string

	// Dir is the disk-mirror directory for the mock backend
	Dir string

	// PublisherURL is the network publisher endpoint (writes)
	PublisherURL string

	// AggregatorURL is the network aggregator endpoint (reads, health)
	AggregatorURL string

	// Epochs is how many storage epochs network writes are paid for
	Epochs int

	// Timeout bounds every network backend call
	Timeout time.Duration
}

// ModelConfig defines the record store settings.
type ModelConfig struct {
	// Class is the record store type: Memory or Database
	Class string

	// Database-specific settings (when Class = "Database")
	Driver string // Database driver: sqlite3, postgres, mysql
	DSN    string // Data Source Name for the database connection
}

// RateLimitConfig allows overriding the per-tier hourly quotas.
// Zero values keep the built-in tier defaults.
type RateLimitConfig struct {
	Free       int
	Premium    int
	Enterprise int
}

// DefaultConfig returns a Config with sensible defaults: mock backend with a
// local disk mirror and in-memory record stores, suitable for offline
// development and tests.
func DefaultConfig() *Config {
	return &Config{
		Main: MainConfig{
			Name:     "FactVault",
			Host:     "0.0.0.0",
			Port:     8080,
			LogLevel: "info",
		},
		Blob: BlobConfig{
			Backend:       "mock",
			Dir:           "data/blobs",
			PublisherURL:  "https://publisher.walrus-testnet.walrus.space",
			AggregatorURL: "https://aggregator.walrus-testnet.walrus.space",
			Epochs:        5,
			Timeout:       30 * time.Second,
		},
		Model: ModelConfig{
			Class:  "Memory",
			Driver: "sqlite3",
			DSN:    "factvault.db",
		},
		RateLimit: RateLimitConfig{},
	}
}

// Load reads configuration from an INI file and environment variables.
// Environment variables override file settings. If the config file doesn't
// exist, default values are used.
//
// Environment variable format: FACTVAULT_SECTION_KEY
// Example: FACTVAULT_MAIN_PORT=9090
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile parses an INI configuration file.
func (c *Config) loadFromFile(path string) error {
	iniFile, err := ini.Load(path)
	if err != nil {
		return err
	}

	if sec, err := iniFile.GetSection("main"); err == nil {
		c.Main.Name = sec.Key("name").MustString(c.Main.Name)
		c.Main.Host = sec.Key("host").MustString(c.Main.Host)
		c.Main.Port = sec.Key("port").MustInt(c.Main.Port)
		c.Main.LogLevel = sec.Key("loglevel").MustString(c.Main.LogLevel)
	}

	if sec, err := iniFile.GetSection("blob"); err == nil {
		c.Blob.Backend = sec.Key("backend").MustString(c.Blob.Backend)
		c.Blob.Dir = sec.Key("dir").MustString(c.Blob.Dir)
		c.Blob.PublisherURL = sec.Key("publisher").MustString(c.Blob.PublisherURL)
		c.Blob.AggregatorURL = sec.Key("aggregator").MustString(c.Blob.AggregatorURL)
		c.Blob.Epochs = sec.Key("epochs").MustInt(c.Blob.Epochs)
		if secs := sec.Key("timeout").MustInt(0); secs > 0 {
			c.Blob.Timeout = time.Duration(secs) * time.Second
		}
	}

	if sec, err := iniFile.GetSection("model"); err == nil {
		c.Model.Class = sec.Key("class").MustString(c.Model.Class)
		c.Model.Driver = sec.Key("driver").MustString(c.Model.Driver)
		c.Model.DSN = sec.Key("dsn").MustString(c.Model.DSN)
	}

	if sec, err := iniFile.GetSection("ratelimit"); err == nil {
		c.RateLimit.Free = sec.Key("free").MustInt(c.RateLimit.Free)
		c.RateLimit.Premium = sec.Key("premium").MustInt(c.RateLimit.Premium)
		c.RateLimit.Enterprise = sec.Key("enterprise").MustInt(c.RateLimit.Enterprise)
	}

	return nil
}

// loadFromEnv overrides configuration with environment variables.
// Format: FACTVAULT_SECTION_KEY (e.g., FACTVAULT_BLOB_BACKEND)
func (c *Config) loadFromEnv() {
	if v := os.Getenv("FACTVAULT_MAIN_NAME"); v != "" {
		c.Main.Name = v
	}
	if v := os.Getenv("FACTVAULT_MAIN_HOST"); v != "" {
		c.Main.Host = v
	}
	if v := os.Getenv("FACTVAULT_MAIN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Main.Port = port
		}
	}
	if v := os.Getenv("FACTVAULT_MAIN_LOGLEVEL"); v != "" {
		c.Main.LogLevel = v
	}

	if v := os.Getenv("FACTVAULT_BLOB_BACKEND"); v != "" {
		c.Blob.Backend = v
	}
	if v := os.Getenv("FACTVAULT_BLOB_DIR"); v != "" {
		c.Blob.Dir = v
	}
	if v := os.Getenv("FACTVAULT_BLOB_PUBLISHER"); v != "" {
		c.Blob.PublisherURL = v
	}
	if v := os.Getenv("FACTVAULT_BLOB_AGGREGATOR"); v != "" {
		c.Blob.AggregatorURL = v
	}
	if v := os.Getenv("FACTVAULT_BLOB_EPOCHS"); v != "" {
		if epochs, err := strconv.Atoi(v); err == nil {
			c.Blob.Epochs = epochs
		}
	}

	if v := os.Getenv("FACTVAULT_MODEL_CLASS"); v != "" {
		c.Model.Class = v
	}
	if v := os.Getenv("FACTVAULT_MODEL_DRIVER"); v != "" {
		c.Model.Driver = v
	}
	if v := os.Getenv("FACTVAULT_MODEL_DSN"); v != "" {
		c.Model.DSN = v
	}
}

// Validate checks that the configuration is valid and consistent.
func (c *Config) Validate() error {
	if c.Main.Port < 1 || c.Main.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Main.Port)
	}

	switch c.Blob.Backend {
	case "mock", "network":
		// Valid
	default:
		return fmt.Errorf("blob backend must be 'mock' or 'network', got %q", c.Blob.Backend)
	}

	if c.Blob.Backend == "network" {
		if c.Blob.PublisherURL == "" || c.Blob.AggregatorURL == "" {
			return fmt.Errorf("network backend requires publisher and aggregator URLs")
		}
		if c.Blob.Epochs < 1 {
			return fmt.Errorf("epochs must be positive, got %d", c.Blob.Epochs)
		}
	}

	switch c.Model.Class {
	case "Memory", "Database":
		// Valid
	default:
		return fmt.Errorf("model class must be 'Memory' or 'Database', got %q", c.Model.Class)
	}

	if c.Model.Class == "Database" {
		switch c.Model.Driver {
		case "sqlite3", "postgres", "mysql":
			// Valid
		default:
			return fmt.Errorf("database driver must be 'sqlite3', 'postgres', or 'mysql', got %q", c.Model.Driver)
		}
	}

	return nil
}
