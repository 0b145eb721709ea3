// Package cli provides shared helpers for the themis command-line
// interface: output formatting for command results, a progress spinner
// for long-running pipeline operations, and signal-aware contexts for
// graceful shutdown.
package cli
