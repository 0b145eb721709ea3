// Mercator Themis is an LLM-driven compliance rule engine for trading
// policies.
//
// It converts free-text firm policy documents into executable compliance
// rules through an iterative generate-validate-regenerate pipeline,
// stores the validated rule set durably, and evaluates proposed trades
// against it with fail-closed semantics.
//
// Usage:
//
//	# Start the API server with default configuration
//	themis run
//
//	# Start with a custom configuration file
//	themis run --config /path/to/config.yaml
//
//	# Ingest a policy document from a file
//	themis ingest --firm "Meridian Capital" --file policy.txt
//
//	# Check a proposed trade
//	themis check --firm "Meridian Capital" --employee-id EMP001 --ticker AAPL
//
//	# Validate configuration without starting the server
//	themis validate
//
//	# Show version information
//	themis version
package main

func main() {
	Execute()
}
