// Package config loads and validates the openbrew service configuration
// from a YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openbrew/openbrew/pkg/telemetry"
)

// StoreDriver selects the menu store backend.
type StoreDriver string

const (
	StoreDriverMemory StoreDriver = "memory"
	StoreDriverSQLite StoreDriver = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" validate:"required"`

	// Store configures the menu store backend.
	Store StoreConfig `yaml:"store" validate:"required"`

	// Telemetry configures logging, tracing, metrics and log shipping.
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the address the API server binds to.
	ListenAddress string `yaml:"listen_address" validate:"required"`
}

// StoreConfig configures the menu store backend.
type StoreConfig struct {
	// Driver selects the backend (memory, sqlite).
	Driver StoreDriver `yaml:"driver" validate:"required,oneof=memory sqlite"`

	// Path is the SQLite database path; required for the sqlite driver.
	Path string `yaml:"path" validate:"required_if=Driver sqlite"`
}

// Default returns the default service configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress: ":8080",
		},
		Store: StoreConfig{
			Driver: StoreDriverMemory,
		},
		Telemetry: *telemetry.DefaultConfig(),
	}
}

// Load reads the configuration from the given YAML file, applies
// environment overrides, and validates the result. An empty path loads
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies well-known environment variables on top of the
// file configuration. Secrets in particular are expected to arrive through
// the environment rather than the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENBREW_LISTEN_ADDRESS"); v != "" {
		cfg.Server.ListenAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Telemetry.Logging.Level = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.Tracing.Endpoint = v
	}
	if v := os.Getenv("COLLECTOR_ENDPOINT"); v != "" {
		cfg.Telemetry.Shipping.Endpoint = v
		cfg.Telemetry.Shipping.Enabled = true
	}
	if v := os.Getenv("COLLECTOR_INGEST_KEY"); v != "" {
		cfg.Telemetry.Shipping.IngestKey = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	return nil
}
