package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(nil)

	c.RecordIngestion("success", 30*time.Second)
	c.RecordIngestion("success", 45*time.Second)
	c.RecordIngestion("error", time.Second)

	if got := testutil.ToFloat64(c.policiesIngested.WithLabelValues("success")); got != 2 {
		t.Errorf("policies_ingested_total{status=success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.policiesIngested.WithLabelValues("error")); got != 1 {
		t.Errorf("policies_ingested_total{status=error} = %v, want 1", got)
	}

	c.RecordRuleState("passed")
	c.RecordRuleState("exhausted")
	if got := testutil.ToFloat64(c.rulesGenerated.WithLabelValues("exhausted")); got != 1 {
		t.Errorf("rules_generated_total{state=exhausted} = %v, want 1", got)
	}

	c.RecordComplianceCheck("allowed", 100*time.Millisecond)
	c.RecordComplianceCheck("denied", 100*time.Millisecond)
	c.RecordComplianceCheck("denied", 100*time.Millisecond)
	if got := testutil.ToFloat64(c.complianceChecks.WithLabelValues("denied")); got != 2 {
		t.Errorf("compliance_checks_total{decision=denied} = %v, want 2", got)
	}
}

func TestCollector_ValidationAttemptClassification(t *testing.T) {
	c := NewCollector(nil)

	c.RecordValidationAttempt("passed", "")
	c.RecordValidationAttempt("failed", "syntax_error")
	c.RecordValidationAttempt("failed", "syntax_error")

	// Passing attempts carry no classification; the label is "none".
	if got := testutil.ToFloat64(c.validationAttempts.WithLabelValues("passed", "none")); got != 1 {
		t.Errorf("validation_attempts_total{passed,none} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.validationAttempts.WithLabelValues("failed", "syntax_error")); got != 2 {
		t.Errorf("validation_attempts_total{failed,syntax_error} = %v, want 2", got)
	}
}

func TestCollector_CacheAndSweep(t *testing.T) {
	c := NewCollector(nil)

	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()
	c.CacheEviction()
	c.SweepDeleted(3)
	c.SweepDeleted(0)
	c.SweepDeleted(-1)

	if got := testutil.ToFloat64(c.cacheHits); got != 2 {
		t.Errorf("cache_hits_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.cacheMisses); got != 1 {
		t.Errorf("cache_misses_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.sweepDeleted); got != 3 {
		t.Errorf("sweep_deleted_total = %v, want 3 (non-positive adds ignored)", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.RecordRuleState("passed")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "mercator_themis_rules_generated_total") {
		t.Errorf("exposition missing namespaced metric:\n%s", body)
	}
}

func TestNewCollector_IndependentRegistries(t *testing.T) {
	// Two collectors must not collide on registration.
	a := NewCollector(nil)
	b := NewCollector(nil)

	a.CacheHit()
	if got := testutil.ToFloat64(b.cacheHits); got != 0 {
		t.Errorf("collector b saw collector a's events: %v", got)
	}
}
