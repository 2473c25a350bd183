// Package config provides configuration management for the competition engine.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete engine configuration.
type Config struct {
	// Server configures the localhost HTTP/WebSocket surface
	Server ServerConfig `yaml:"server"`

	// Storage configures the SQLite data directory
	Storage StorageConfig `yaml:"storage"`

	// Sync configures cross-platform synchronization behavior
	Sync SyncConfig `yaml:"sync"`

	// LogLevel is the minimum level emitted by the structured logger
	LogLevel string `yaml:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// SyncConfig holds cross-platform synchronization settings. It is threaded
// explicitly through dispatcher and processor calls; there is no ambient
// process-wide sync state.
type SyncConfig struct {
	// AutoSync gates all dispatching; false turns every dispatch into a no-op
	AutoSync bool `yaml:"auto_sync"`
	// SyncIntervalMs is the scheduler's drain period in milliseconds
	SyncIntervalMs int `yaml:"sync_interval_ms"`
	// ConflictResolution selects the strategy: latest, source_priority or manual
	ConflictResolution string `yaml:"conflict_resolution"`
	// SyncAttempts gates propagation of attempt results
	SyncAttempts bool `yaml:"sync_attempts"`
	// SyncDeclarations gates propagation of declared next-attempt weights
	SyncDeclarations bool `yaml:"sync_declarations"`
}

// Strategy names accepted in SyncConfig.ConflictResolution.
const (
	StrategyLatest         = "latest"
	StrategySourcePriority = "source_priority"
	StrategyManual         = "manual"
)

// SyncInterval returns the drain period as a time.Duration.
func (s SyncConfig) SyncInterval() time.Duration {
	return time.Duration(s.SyncIntervalMs) * time.Millisecond
}

// Default returns the default configuration, matching the behavior the
// scoring stations ship with: auto sync on, five second drain interval,
// latest-wins conflict resolution.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8090},
		Storage: StorageConfig{DataDir: "./data"},
		Sync: SyncConfig{
			AutoSync:           true,
			SyncIntervalMs:     5000,
			ConflictResolution: StrategyLatest,
			SyncAttempts:       true,
			SyncDeclarations:   true,
		},
		LogLevel: "INFO",
	}
}

// Load reads configuration from a YAML file, applies environment overrides,
// and validates the result. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides configuration from environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PLM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PLM_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("PLM_AUTO_SYNC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Sync.AutoSync = b
		}
	}
	if v := os.Getenv("PLM_CONFLICT_RESOLUTION"); v != "" {
		cfg.Sync.ConflictResolution = v
	}
	if v := os.Getenv("PLM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Sync.SyncIntervalMs <= 0 {
		return fmt.Errorf("sync_interval_ms must be positive, got %d", c.Sync.SyncIntervalMs)
	}
	switch c.Sync.ConflictResolution {
	case StrategyLatest, StrategySourcePriority, StrategyManual:
	default:
		return fmt.Errorf("unknown conflict_resolution %q", c.Sync.ConflictResolution)
	}
	return nil
}
