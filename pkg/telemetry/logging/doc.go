// Package logging configures structured logging for Mercator Themis on
// top of Go's standard log/slog package.
//
// The package builds a root *slog.Logger from configuration (level and
// format selection) and provides context helpers for propagating request
// IDs through handler and pipeline code:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	ctx = logging.WithRequestID(ctx, requestID)
//	logger.InfoContext(ctx, "policy ingested", "firm_name", firm)
//
// Components derive scoped loggers with logger.With("component", name).
package logging
