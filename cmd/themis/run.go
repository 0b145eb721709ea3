package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/policy/watcher"
	"mercator-hq/themis/pkg/server"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Themis API server",
	Long: `Start the Themis API server with the specified configuration.

The server exposes policy ingestion and compliance check endpoints, runs
the rule store's TTL sweeper, and optionally watches a drop directory
for policy documents.

Examples:
  # Start with default config
  themis run

  # Start with custom config
  themis run --config /etc/themis/config.yaml

  # Override listen address
  themis run --listen 0.0.0.0:8080

  # Validate config without starting the server
  themis run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Mercator Themis v%s\n", Version)

	application, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	// Sweeper and watcher shut down with the server on SIGINT/SIGTERM.
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	if err := application.store.StartSweeper(ctx); err != nil {
		return fmt.Errorf("failed to start store sweeper: %w", err)
	}
	defer application.store.StopSweeper()

	if cfg.Watcher.Enabled {
		w, err := watcher.New(watcher.Config{
			Dir:              cfg.Watcher.Dir,
			DebounceInterval: cfg.Watcher.DebounceInterval,
		}, application.pipeline, logger)
		if err != nil {
			return fmt.Errorf("failed to start policy watcher: %w", err)
		}
		w.Start(ctx)
		defer w.Stop()
		fmt.Printf("✓ Policy watcher on %s\n", cfg.Watcher.Dir)
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		metricsHandler = application.collector.Handler()
	}

	srv := server.New(&cfg.Server, &server.Handlers{
		Ingestor:  application.pipeline,
		Checker:   application.executor,
		Directory: directoryOrNil(application),
		Parser:    application.parser,
		Metrics:   application.collector,
		Logger:    logger,
	}, metricsHandler, cfg.Telemetry.Metrics.Path, logger)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

// directoryOrNil avoids handing the server a typed-nil interface value.
func directoryOrNil(a *app) server.EmployeeDirectory {
	if a.directory == nil {
		return nil
	}
	return a.directory
}
