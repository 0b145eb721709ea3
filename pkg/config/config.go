package config

import "time"

// Config is the root configuration structure for Mercator Themis. It
// contains all configuration sections for the HTTP server, the LLM
// provider, the sandbox harness, the generation pipeline, the rule
// store, and observability.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address and timeouts.
	Server ServerConfig `yaml:"server"`

	// Provider contains configuration for the LLM provider used to
	// generate and regenerate compliance rules.
	Provider ProviderConfig `yaml:"provider"`

	// Sandbox contains configuration for the external validation and
	// execution harness.
	Sandbox SandboxConfig `yaml:"sandbox"`

	// Pipeline contains configuration for the iterative
	// generate-validate-regenerate pipeline.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Store contains configuration for durable rule storage, the
	// in-memory cache, and the TTL sweeper.
	Store StoreConfig `yaml:"store"`

	// Employees contains configuration for the employee directory.
	Employees EmployeesConfig `yaml:"employees"`

	// Watcher contains configuration for the optional policy
	// drop-directory watcher.
	Watcher WatcherConfig `yaml:"watcher"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes
	// of the response. Policy ingestion can run for minutes, so this
	// must comfortably exceed pipeline time. Default: 15m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ProviderConfig contains configuration for the LLM provider.
type ProviderConfig struct {
	// Name identifies the provider instance in logs.
	// Default: "anthropic"
	Name string `yaml:"name"`

	// Type selects the provider implementation: "anthropic" or
	// "openai". If empty, it is inferred from Name.
	Type string `yaml:"type"`

	// BaseURL is the base URL for the provider's API endpoint.
	BaseURL string `yaml:"base_url"`

	// APIKey is the provider API key. This should be loaded from the
	// THEMIS_PROVIDER_API_KEY environment variable rather than stored
	// in the file.
	APIKey string `yaml:"api_key"`

	// Model is the model used for rule generation.
	// Default: "claude-sonnet-4-20250514"
	Model string `yaml:"model"`

	// MaxTokens caps completion length for generation requests.
	// Default: 3000
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for generation requests. Rule generation wants
	// deterministic output. Default: 0
	Temperature float64 `yaml:"temperature"`

	// Timeout is the per-request timeout. Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry budget for transient provider errors.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`
}

// SandboxConfig contains configuration for the external sandbox
// harness that validates and executes generated rule code.
type SandboxConfig struct {
	// BaseURL is the harness endpoint. Default: "http://127.0.0.1:8481"
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request timeout. Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry budget for transient harness errors.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`
}

// PipelineConfig contains configuration for the generation pipeline.
type PipelineConfig struct {
	// MaxAttempts is the maximum number of generation attempts per
	// rule, including the initial generation. Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// Concurrency bounds the number of rules validated in parallel.
	// Default: 4
	Concurrency int `yaml:"concurrency"`
}

// StoreConfig contains configuration for rule set persistence.
type StoreConfig struct {
	// Path is the SQLite database file path. Default: "data/rules.db"
	Path string `yaml:"path"`

	// MaxCacheEntries bounds the in-memory rule set cache. When full,
	// the oldest entry is evicted first. Default: 100
	MaxCacheEntries int `yaml:"max_cache_entries"`

	// TTL is how long a stored rule set remains valid before the
	// sweeper removes it. Default: 24h
	TTL time.Duration `yaml:"ttl"`

	// SweepSchedule is a cron expression controlling expiry sweeps.
	// Default: "0 * * * *" (hourly)
	SweepSchedule string `yaml:"sweep_schedule"`

	// MaxOpenConns limits open database connections. Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle database connections. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables SQLite write-ahead logging. Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the SQLite busy timeout. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// EmployeesConfig contains configuration for the employee directory.
type EmployeesConfig struct {
	// Path is the YAML employee directory file. Optional; compliance
	// checks may also supply employee details inline.
	Path string `yaml:"path"`
}

// WatcherConfig contains configuration for the policy drop-directory
// watcher.
type WatcherConfig struct {
	// Enabled controls whether the watcher runs. Default: false
	Enabled bool `yaml:"enabled"`

	// Dir is the directory watched for policy documents.
	Dir string `yaml:"dir"`

	// DebounceInterval is how long to wait after the last write before
	// ingesting a changed file. Default: 2s
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path. Default: "/metrics"
	Path string `yaml:"path"`
}
