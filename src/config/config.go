package config

import (
	"fmt"
	"os"

	"pos-sync/src/helpers"
	"pos-sync/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides validation and defaulting
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills unset tuning values with their documented defaults.
func (c *Config) applyDefaults() {
	if c.Sync.Channel == "" {
		c.Sync.Channel = "pos_changes"
	}
	if c.Sync.DebounceMs <= 0 {
		c.Sync.DebounceMs = 500
	}
	if c.Sync.EventBufferLen <= 0 {
		c.Sync.EventBufferLen = 256
	}
	if c.Metrics.KitchenHandles <= 0 {
		c.Metrics.KitchenHandles = 3
	}
	if c.Metrics.DefaultPrepMinutes <= 0 {
		c.Metrics.DefaultPrepMinutes = 8
	}
	if c.Metrics.RushWindowMinutes <= 0 {
		c.Metrics.RushWindowMinutes = 60
	}
	if c.Metrics.AutoCancelMinutes <= 0 {
		c.Metrics.AutoCancelMinutes = 30
	}
	if c.Metrics.SweepIntervalSec <= 0 {
		c.Metrics.SweepIntervalSec = 60
	}
	if c.Metrics.RateLimitMax <= 0 {
		c.Metrics.RateLimitMax = 10
	}
	if c.Metrics.RateLimitWindowMs <= 0 {
		c.Metrics.RateLimitWindowMs = 60000
	}
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = 10
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return helpers.NewConfigurationError("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return helpers.NewConfigurationError("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return helpers.NewConfigurationError(fmt.Sprintf("invalid server port number: %d (must be between 1025 and 65535)", c.Port))
	}

	// Validate Backend configuration
	switch c.Backend.Kind {
	case "http":
		if c.Backend.BaseURL == "" {
			return helpers.NewConfigurationError("backend base_url cannot be empty for http backend")
		}
		if c.Backend.WSURL == "" {
			return helpers.NewConfigurationError("backend ws_url cannot be empty for http backend")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return helpers.NewConfigurationError("db_connection_string cannot be empty for postgres backend")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return helpers.NewConfigurationError("db_path cannot be empty for sqlite backend")
		}
	default:
		return helpers.NewConfigurationError(fmt.Sprintf("unsupported backend kind: %q", c.Backend.Kind))
	}

	// Validate Network configuration
	if c.Network.MaxRetries < 0 {
		return helpers.NewConfigurationError("max retries cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
