package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/rules"
)

var checkFlags struct {
	firm       string
	employeeID string
	ticker     string
	action     string
	query      string
	tradeDate  string
	asJSON     bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a proposed trade against a firm's compliance rules",
	Long: `Evaluate a proposed trade against the firm's stored compliance rules.

The trade can be given explicitly (--ticker, --action) or as a
natural-language query (--query) that is parsed with the configured
LLM provider.

Examples:
  # Explicit trade
  themis check --firm "Meridian Capital" --employee-id EMP001 --ticker AAPL --action buy

  # Natural-language query
  themis check --firm "Meridian Capital" --employee-id EMP001 \
    --query "Can I buy 100 shares of Apple tomorrow?"`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.firm, "firm", "", "firm name (required)")
	checkCmd.Flags().StringVar(&checkFlags.employeeID, "employee-id", "", "employee ID (required)")
	checkCmd.Flags().StringVar(&checkFlags.ticker, "ticker", "", "security ticker")
	checkCmd.Flags().StringVar(&checkFlags.action, "action", "buy", "requested action (buy, sell)")
	checkCmd.Flags().StringVar(&checkFlags.query, "query", "", "natural-language trade query")
	checkCmd.Flags().StringVar(&checkFlags.tradeDate, "trade-date", "", "trade date (YYYY-MM-DD, default today)")
	checkCmd.Flags().BoolVar(&checkFlags.asJSON, "json", false, "emit the result as JSON")
	_ = checkCmd.MarkFlagRequired("firm")
	_ = checkCmd.MarkFlagRequired("employee-id")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkFlags.ticker == "" && checkFlags.query == "" {
		return fmt.Errorf("either --ticker or --query is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	application, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if application.directory == nil {
		return fmt.Errorf("no employee directory configured (set employees.path)")
	}
	employee, err := application.directory.Lookup(checkFlags.employeeID)
	if err != nil {
		return err
	}

	security := rules.SecurityContext{
		Ticker:          strings.ToUpper(strings.TrimSpace(checkFlags.ticker)),
		RequestedAction: checkFlags.action,
	}
	tradeDate := checkFlags.tradeDate

	if checkFlags.query != "" {
		parsed, err := application.parser.Parse(cmd.Context(), checkFlags.query)
		if err != nil {
			return fmt.Errorf("query parsing failed: %w", err)
		}
		security.Ticker = parsed.Ticker
		security.RequestedAction = parsed.Action
		if tradeDate == "" {
			tradeDate = parsed.TradeDate
		}
	}
	if tradeDate == "" {
		tradeDate = time.Now().UTC().Format("2006-01-02")
	}

	result, err := application.executor.CheckCompliance(cmd.Context(), checkFlags.firm, *employee, security, tradeDate)
	if err != nil {
		return fmt.Errorf("compliance check failed: %w", err)
	}

	if checkFlags.asJSON {
		formatter := &cli.JSONFormatter{Indent: true}
		return formatter.FormatTo(os.Stdout, result)
	}

	if result.Allowed {
		fmt.Printf("✓ ALLOWED: %s may %s %s on %s (%d rules checked)\n",
			employee.ID, security.RequestedAction, security.Ticker, tradeDate, len(result.RulesChecked))
		return nil
	}

	fmt.Printf("✗ DENIED: %s may not %s %s on %s\n",
		employee.ID, security.RequestedAction, security.Ticker, tradeDate)
	for _, reason := range result.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	if len(result.PolicyRefs) > 0 {
		fmt.Printf("  refs: %s\n", strings.Join(result.PolicyRefs, ", "))
	}
	return nil
}
