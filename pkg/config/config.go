// Package config loads the assetcat configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDBFile is used when neither the file nor a flag names a database.
	DefaultDBFile = "assets.sqlite"

	defaultAddr            = "127.0.0.1:8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxAttempts     = 100
)

// Config is the assetcat configuration.
type Config struct {
	// DBFile is the catalog database path.
	DBFile    string          `yaml:"db_file" validate:"required"`
	// RootDir holds the files/ tree; empty means the database directory.
	RootDir   string          `yaml:"root_dir"`
	// LogLevel is a zerolog level name.
	LogLevel  string          `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	// LogJSON switches logs to JSON lines.
	LogJSON   bool            `yaml:"log_json"`
	Server    ServerConfig    `yaml:"server"`
	Placement PlacementConfig `yaml:"placement"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	// IngestDir confines the sources POST /assets may read. Empty disables server-side ingest.
	IngestDir       string        `yaml:"ingest_dir"`
}

// PlacementConfig configures collision handling.
type PlacementConfig struct {
	MaxAttempts uint `yaml:"max_attempts" validate:"min=1,max=10000"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBFile:   DefaultDBFile,
		LogLevel: "info",
		Server: ServerConfig{
			Addr:            defaultAddr,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Placement: PlacementConfig{
			MaxAttempts: defaultMaxAttempts,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec // the operator chooses the config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// Write stores the configuration as YAML.
func (c *Config) Write(path string) error {
	if path == "" {
		return errors.New("file path cannot be empty")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}
