package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "mercator"
	subsystem = "themis"
)

// Collector manages all Prometheus metrics for Themis: policy
// ingestion, rule validation, compliance checks, and the rule store
// cache. It registers everything against its own registry so tests can
// create independent collectors.
type Collector struct {
	registry *prometheus.Registry

	// Ingestion metrics
	policiesIngested *prometheus.CounterVec
	ingestDuration   prometheus.Histogram
	rulesGenerated   *prometheus.CounterVec

	// Validation metrics
	validationAttempts *prometheus.CounterVec

	// Compliance metrics
	complianceChecks  *prometheus.CounterVec
	complianceLatency prometheus.Histogram

	// Store metrics
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	sweepDeleted   prometheus.Counter
}

// NewCollector creates a metrics collector with the specified registry.
// If registry is nil, a new private registry is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		policiesIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "policies_ingested_total",
				Help:      "Total number of policy ingestion runs by final status",
			},
			[]string{"status"},
		),

		ingestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ingest_duration_seconds",
				Help:      "Duration of the full generate-validate-store pipeline",
				// Pipeline runs involve multiple LLM round-trips.
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),

		rulesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rules_generated_total",
				Help:      "Total number of rules produced by terminal pipeline state",
			},
			[]string{"state"},
		),

		validationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_attempts_total",
				Help:      "Total number of sandbox validation attempts",
			},
			[]string{"outcome", "classification"},
		),

		complianceChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "compliance_checks_total",
				Help:      "Total number of compliance checks by decision",
			},
			[]string{"decision"},
		),

		complianceLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "compliance_check_duration_seconds",
				Help:      "Duration of compliance check evaluation",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of rule set cache hits",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of rule set cache misses",
		}),

		cacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_evictions_total",
			Help:      "Total number of rule set cache evictions",
		}),

		sweepDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sweep_deleted_total",
			Help:      "Total number of expired rule sets removed by the sweeper",
		}),
	}

	registry.MustRegister(
		c.policiesIngested,
		c.ingestDuration,
		c.rulesGenerated,
		c.validationAttempts,
		c.complianceChecks,
		c.complianceLatency,
		c.cacheHits,
		c.cacheMisses,
		c.cacheEvictions,
		c.sweepDeleted,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordIngestion records a completed policy ingestion run.
// status is "success" or "error".
func (c *Collector) RecordIngestion(status string, duration time.Duration) {
	c.policiesIngested.WithLabelValues(status).Inc()
	c.ingestDuration.Observe(duration.Seconds())
}

// RecordRuleState records a rule reaching a terminal pipeline state
// ("passed" or "exhausted").
func (c *Collector) RecordRuleState(state string) {
	c.rulesGenerated.WithLabelValues(state).Inc()
}

// RecordValidationAttempt records a single sandbox validation attempt.
// outcome is "passed" or "failed"; classification is the failure
// classification, or "" for passing attempts.
func (c *Collector) RecordValidationAttempt(outcome, classification string) {
	if classification == "" {
		classification = "none"
	}
	c.validationAttempts.WithLabelValues(outcome, classification).Inc()
}

// RecordComplianceCheck records a completed compliance check.
// decision is "allowed" or "denied".
func (c *Collector) RecordComplianceCheck(decision string, duration time.Duration) {
	c.complianceChecks.WithLabelValues(decision).Inc()
	c.complianceLatency.Observe(duration.Seconds())
}

// CacheHit records a rule set cache hit.
func (c *Collector) CacheHit() { c.cacheHits.Inc() }

// CacheMiss records a rule set cache miss.
func (c *Collector) CacheMiss() { c.cacheMisses.Inc() }

// CacheEviction records a rule set cache eviction.
func (c *Collector) CacheEviction() { c.cacheEvictions.Inc() }

// SweepDeleted records expired rule sets removed by a sweep.
func (c *Collector) SweepDeleted(n int) {
	if n > 0 {
		c.sweepDeleted.Add(float64(n))
	}
}
