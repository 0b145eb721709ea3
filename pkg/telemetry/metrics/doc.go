// Package metrics provides Prometheus metrics for Mercator Themis.
//
// All metrics are registered under the "mercator" namespace with the
// "themis" subsystem:
//
//   - mercator_themis_policies_ingested_total{status}
//   - mercator_themis_ingest_duration_seconds
//   - mercator_themis_rules_generated_total{state}
//   - mercator_themis_validation_attempts_total{outcome,classification}
//   - mercator_themis_compliance_checks_total{decision}
//   - mercator_themis_compliance_check_duration_seconds
//   - mercator_themis_cache_hits_total / misses / evictions
//   - mercator_themis_sweep_deleted_total
//
// The Collector owns a private prometheus.Registry; Handler exposes it
// in the standard exposition format for scraping.
package metrics
