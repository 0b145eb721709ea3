package main

import (
	"fmt"
	"log/slog"
	"os"

	"mercator-hq/themis/pkg/config"
	"mercator-hq/themis/pkg/employees"
	"mercator-hq/themis/pkg/providerfactory"
	"mercator-hq/themis/pkg/providers"
	"mercator-hq/themis/pkg/rules/executor"
	"mercator-hq/themis/pkg/rules/generator"
	"mercator-hq/themis/pkg/rules/pipeline"
	"mercator-hq/themis/pkg/rules/queryparser"
	"mercator-hq/themis/pkg/rules/sandbox"
	"mercator-hq/themis/pkg/rules/store"
	"mercator-hq/themis/pkg/telemetry/logging"
	"mercator-hq/themis/pkg/telemetry/metrics"
)

// app holds the wired component graph shared by the run, ingest, and
// check commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	provider  providers.Provider
	harness   *sandbox.Client
	store     *store.Store
	pipeline  *pipeline.Pipeline
	executor  *executor.Executor
	directory *employees.Directory
	parser    *queryparser.Parser
}

// loadConfig loads the configuration file with environment overrides.
// When the config flag was left at its default and no file exists, the
// built-in defaults are used so local runs work out of the box.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
		cfg := config.DefaultConfig()
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// setupLogging builds the root logger from configuration and installs
// it as the process default.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// buildApp constructs the full component graph from configuration.
func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	collector := metrics.NewCollector(nil)

	provider, err := providerfactory.NewProvider(providers.ProviderConfig{
		Name:       cfg.Provider.Name,
		Type:       cfg.Provider.Type,
		BaseURL:    cfg.Provider.BaseURL,
		APIKey:     cfg.Provider.APIKey,
		Model:      cfg.Provider.Model,
		Timeout:    cfg.Provider.Timeout,
		MaxRetries: cfg.Provider.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	harness := sandbox.NewClient(&sandbox.Config{
		BaseURL:    cfg.Sandbox.BaseURL,
		Timeout:    cfg.Sandbox.Timeout,
		MaxRetries: cfg.Sandbox.MaxRetries,
	})

	ruleStore, err := store.New(&store.Config{
		Path:            cfg.Store.Path,
		MaxCacheEntries: cfg.Store.MaxCacheEntries,
		TTL:             cfg.Store.TTL,
		SweepSchedule:   cfg.Store.SweepSchedule,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		WALMode:         cfg.Store.WALMode,
		BusyTimeout:     cfg.Store.BusyTimeout,
	}, store.WithMetrics(collector))
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to open rule store: %w", err)
	}

	gen := generator.New(provider, &generator.Config{
		Model:       cfg.Provider.Model,
		MaxTokens:   cfg.Provider.MaxTokens,
		Temperature: cfg.Provider.Temperature,
	})

	pipe := pipeline.New(gen, harness, ruleStore, &pipeline.Config{
		MaxAttempts: cfg.Pipeline.MaxAttempts,
		Concurrency: cfg.Pipeline.Concurrency,
	}, pipeline.WithMetrics(collector), pipeline.WithLogger(logger))

	exec := executor.New(ruleStore, harness)

	var directory *employees.Directory
	if cfg.Employees.Path != "" {
		directory, err = employees.Load(cfg.Employees.Path)
		if err != nil {
			ruleStore.Close()
			provider.Close()
			return nil, fmt.Errorf("failed to load employee directory: %w", err)
		}
		logger.Info("employee directory loaded",
			"path", cfg.Employees.Path,
			"employees", directory.Len(),
		)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		provider:  provider,
		harness:   harness,
		store:     ruleStore,
		pipeline:  pipe,
		executor:  exec,
		directory: directory,
		parser:    queryparser.New(provider, cfg.Provider.Model),
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.provider != nil {
		a.provider.Close()
	}
}
