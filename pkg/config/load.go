package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path. It applies default values, validates the configuration, and
// returns any errors. The configuration is not modified by environment
// variables; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention THEMIS_SECTION_FIELD (e.g.
// THEMIS_SERVER_LISTEN_ADDRESS) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides using the
// THEMIS_SECTION_FIELD format.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	setString("THEMIS_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("THEMIS_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("THEMIS_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("THEMIS_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	setDuration("THEMIS_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Provider overrides
	setString("THEMIS_PROVIDER_NAME", &cfg.Provider.Name)
	setString("THEMIS_PROVIDER_TYPE", &cfg.Provider.Type)
	setString("THEMIS_PROVIDER_BASE_URL", &cfg.Provider.BaseURL)
	setString("THEMIS_PROVIDER_API_KEY", &cfg.Provider.APIKey)
	setString("THEMIS_PROVIDER_MODEL", &cfg.Provider.Model)
	setInt("THEMIS_PROVIDER_MAX_TOKENS", &cfg.Provider.MaxTokens)
	setDuration("THEMIS_PROVIDER_TIMEOUT", &cfg.Provider.Timeout)

	// Sandbox overrides
	setString("THEMIS_SANDBOX_BASE_URL", &cfg.Sandbox.BaseURL)
	setDuration("THEMIS_SANDBOX_TIMEOUT", &cfg.Sandbox.Timeout)

	// Pipeline overrides
	setInt("THEMIS_PIPELINE_MAX_ATTEMPTS", &cfg.Pipeline.MaxAttempts)
	setInt("THEMIS_PIPELINE_CONCURRENCY", &cfg.Pipeline.Concurrency)

	// Store overrides
	setString("THEMIS_STORE_PATH", &cfg.Store.Path)
	setInt("THEMIS_STORE_MAX_CACHE_ENTRIES", &cfg.Store.MaxCacheEntries)
	setDuration("THEMIS_STORE_TTL", &cfg.Store.TTL)
	setString("THEMIS_STORE_SWEEP_SCHEDULE", &cfg.Store.SweepSchedule)

	// Employees overrides
	setString("THEMIS_EMPLOYEES_PATH", &cfg.Employees.Path)

	// Watcher overrides
	setBool("THEMIS_WATCHER_ENABLED", &cfg.Watcher.Enabled)
	setString("THEMIS_WATCHER_DIR", &cfg.Watcher.Dir)

	// Telemetry overrides
	setString("THEMIS_LOG_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("THEMIS_LOG_FORMAT", &cfg.Telemetry.Logging.Format)
}

func setString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
