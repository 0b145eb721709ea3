package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access
// to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors
// are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProvider(&cfg.Provider)...)
	errs = append(errs, validateSandbox(&cfg.Sandbox)...)
	errs = append(errs, validatePipeline(&cfg.Pipeline)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateWatcher(&cfg.Watcher)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "must not be empty",
		})
	} else if !strings.Contains(cfg.ListenAddress, ":") {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("must be in host:port format, got %q", cfg.ListenAddress),
		})
	}

	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateProvider(cfg *ProviderConfig) []FieldError {
	var errs []FieldError

	switch cfg.Type {
	case "", "anthropic", "openai":
	default:
		errs = append(errs, FieldError{
			Field:   "provider.type",
			Message: fmt.Sprintf("must be \"anthropic\" or \"openai\", got %q", cfg.Type),
		})
	}

	if cfg.BaseURL != "" {
		if _, err := url.Parse(cfg.BaseURL); err != nil {
			errs = append(errs, FieldError{
				Field:   "provider.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "provider.model",
			Message: "must not be empty",
		})
	}

	if cfg.MaxTokens < 1 {
		errs = append(errs, FieldError{
			Field:   "provider.max_tokens",
			Message: "must be at least 1",
		})
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{
			Field:   "provider.temperature",
			Message: "must be between 0 and 2",
		})
	}

	return errs
}

func validateSandbox(cfg *SandboxConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   "sandbox.base_url",
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "sandbox.base_url",
			Message: fmt.Sprintf("must be an absolute URL, got %q", cfg.BaseURL),
		})
	}

	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "sandbox.max_retries",
			Message: "must not be negative",
		})
	}

	return errs
}

func validatePipeline(cfg *PipelineConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "pipeline.max_attempts",
			Message: "must be at least 1",
		})
	}

	if cfg.Concurrency < 1 {
		errs = append(errs, FieldError{
			Field:   "pipeline.concurrency",
			Message: "must be at least 1",
		})
	}

	return errs
}

func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "store.path",
			Message: "must not be empty",
		})
	}

	if cfg.MaxCacheEntries < 1 {
		errs = append(errs, FieldError{
			Field:   "store.max_cache_entries",
			Message: "must be at least 1",
		})
	}

	if cfg.TTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "store.ttl",
			Message: "must be positive",
		})
	}

	if cfg.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "store.sweep_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.SweepSchedule, err),
			})
		}
	}

	return errs
}

func validateWatcher(cfg *WatcherConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "watcher.dir",
			Message: "must be set when watcher is enabled",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be \"json\" or \"text\", got %q", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}
