package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 15 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Provider defaults
	DefaultProviderName        = "anthropic"
	DefaultProviderModel       = "claude-sonnet-4-20250514"
	DefaultProviderMaxTokens   = 3000
	DefaultProviderTemperature = 0.0
	DefaultProviderTimeout     = 120 * time.Second
	DefaultProviderMaxRetries  = 3

	// Sandbox defaults
	DefaultSandboxBaseURL    = "http://127.0.0.1:8481"
	DefaultSandboxTimeout    = 60 * time.Second
	DefaultSandboxMaxRetries = 2

	// Pipeline defaults
	DefaultPipelineMaxAttempts = 3
	DefaultPipelineConcurrency = 4

	// Store defaults
	DefaultStorePath            = "data/rules.db"
	DefaultStoreMaxCacheEntries = 100
	DefaultStoreTTL             = 24 * time.Hour
	DefaultStoreSweepSchedule   = "0 * * * *"
	DefaultStoreMaxOpenConns    = 10
	DefaultStoreMaxIdleConns    = 5
	DefaultStoreWALMode         = true
	DefaultStoreBusyTimeout     = 5 * time.Second

	// Watcher defaults
	DefaultWatcherDebounceInterval = 2 * time.Second

	// Telemetry defaults
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// DefaultConfig returns a configuration populated entirely with default
// values, suitable for local development against a local sandbox.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued fields in
// the configuration. It is called automatically by LoadConfig.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Provider
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = DefaultProviderName
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultProviderModel
	}
	if cfg.Provider.MaxTokens == 0 {
		cfg.Provider.MaxTokens = DefaultProviderMaxTokens
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = DefaultProviderMaxRetries
	}

	// Sandbox
	if cfg.Sandbox.BaseURL == "" {
		cfg.Sandbox.BaseURL = DefaultSandboxBaseURL
	}
	if cfg.Sandbox.Timeout == 0 {
		cfg.Sandbox.Timeout = DefaultSandboxTimeout
	}
	if cfg.Sandbox.MaxRetries == 0 {
		cfg.Sandbox.MaxRetries = DefaultSandboxMaxRetries
	}

	// Pipeline
	if cfg.Pipeline.MaxAttempts == 0 {
		cfg.Pipeline.MaxAttempts = DefaultPipelineMaxAttempts
	}
	if cfg.Pipeline.Concurrency == 0 {
		cfg.Pipeline.Concurrency = DefaultPipelineConcurrency
	}

	// Store
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.MaxCacheEntries == 0 {
		cfg.Store.MaxCacheEntries = DefaultStoreMaxCacheEntries
	}
	if cfg.Store.TTL == 0 {
		cfg.Store.TTL = DefaultStoreTTL
	}
	if cfg.Store.SweepSchedule == "" {
		cfg.Store.SweepSchedule = DefaultStoreSweepSchedule
	}
	if cfg.Store.MaxOpenConns == 0 {
		cfg.Store.MaxOpenConns = DefaultStoreMaxOpenConns
	}
	if cfg.Store.MaxIdleConns == 0 {
		cfg.Store.MaxIdleConns = DefaultStoreMaxIdleConns
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultStoreBusyTimeout
	}
	// YAML cannot distinguish an unset bool from an explicit false;
	// WAL is always on.
	cfg.Store.WALMode = DefaultStoreWALMode

	// Watcher
	if cfg.Watcher.DebounceInterval == 0 {
		cfg.Watcher.DebounceInterval = DefaultWatcherDebounceInterval
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}
}
