package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file without starting anything.

Exits non-zero with a list of field errors if the configuration is
invalid.

Examples:
  themis validate
  themis validate --config /etc/themis/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Println("✓ Configuration valid")
		fmt.Printf("  server:   %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  provider: %s (%s)\n", cfg.Provider.Name, cfg.Provider.Model)
		fmt.Printf("  sandbox:  %s\n", cfg.Sandbox.BaseURL)
		fmt.Printf("  store:    %s (cache %d, ttl %s)\n",
			cfg.Store.Path, cfg.Store.MaxCacheEntries, cfg.Store.TTL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
