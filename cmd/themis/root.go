package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "themis",
	Short: "Mercator Themis - LLM-driven compliance rule engine",
	Long: `Mercator Themis converts free-text trading policy documents into
executable compliance rules and evaluates proposed trades against them.

It provides:
  - LLM-backed rule generation with iterative validation and repair
  - Sandboxed validation and execution of generated rule code
  - Durable rule storage with a bounded cache and TTL expiry
  - Fail-closed compliance checking over an HTTP API

For more information, visit: https://github.com/mercator-hq/themis`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
