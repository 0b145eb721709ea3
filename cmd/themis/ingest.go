package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
)

var ingestFlags struct {
	firm   string
	file   string
	asJSON bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a policy document and deploy compliance rules",
	Long: `Ingest a policy document from a file, generate compliance rules,
validate them in the sandbox, and store the resulting rule set.

Examples:
  # Ingest a policy for a firm
  themis ingest --firm "Meridian Capital" --file policy.txt

  # Emit the deployed rule set as JSON
  themis ingest --firm "Meridian Capital" --file policy.txt --json`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFlags.firm, "firm", "", "firm name (required)")
	ingestCmd.Flags().StringVar(&ingestFlags.file, "file", "", "policy document file (required)")
	ingestCmd.Flags().BoolVar(&ingestFlags.asJSON, "json", false, "emit the deployed rule set as JSON")
	_ = ingestCmd.MarkFlagRequired("firm")
	_ = ingestCmd.MarkFlagRequired("file")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(ingestFlags.file)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("policy file %s is empty", ingestFlags.file)
	}

	application, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	spinner := cli.NewSpinner(nil, fmt.Sprintf("generating rules for %s", ingestFlags.firm))
	if !ingestFlags.asJSON {
		spinner.Start()
	}
	ruleSet, err := application.pipeline.ProcessPolicy(cmd.Context(), string(data), ingestFlags.firm)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("policy ingestion failed: %w", err)
	}

	if ingestFlags.asJSON {
		formatter := &cli.JSONFormatter{Indent: true}
		return formatter.FormatTo(os.Stdout, ruleSet)
	}

	fmt.Printf("✓ Deployed %d rules for %s (%d total iterations)\n",
		len(ruleSet.Rules), ruleSet.FirmName, ruleSet.TotalIterations)
	for _, rule := range ruleSet.Rules {
		status := "validated"
		if !rule.Active {
			status = "exhausted"
		}
		fmt.Printf("  - %s [%s, %d attempts]\n", rule.RuleName, status, rule.GenerationAttempt)
	}
	return nil
}
