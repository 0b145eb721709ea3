// Package server provides the HTTP API for Mercator Themis.
//
// Endpoints:
//
//   - POST /api/v1/policies/ingest    ingest a policy document and deploy rules
//   - POST /api/v1/compliance/check   evaluate a proposed trade
//   - GET  /healthz                   liveness probe
//   - GET  /metrics                   Prometheus metrics (if enabled)
//
// The server wraps handlers in a middleware chain: panic recovery,
// request logging, and request-ID assignment. Shutdown is graceful with
// a configurable timeout.
package server
