package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/themis/pkg/rules"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&Config{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})
	return client, server
}

func TestClient_Validate(t *testing.T) {
	var gotBody validateRequest
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/validate" {
			t.Errorf("path = %q, want /v1/validate", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(Outcome{
			Passed:         false,
			Classification: ClassTestFailure,
			Message:        "fixture 3 expected denial",
			TestOutput:     "FAILED fixture_blackout",
		})
	}))

	outcome, err := client.Validate(context.Background(), "def check_compliance(): pass")
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if gotBody.RuleSource != "def check_compliance(): pass" {
		t.Errorf("RuleSource on the wire = %q", gotBody.RuleSource)
	}
	if outcome.Passed {
		t.Error("Passed = true, want false")
	}
	if outcome.Classification != ClassTestFailure {
		t.Errorf("Classification = %q, want %q", outcome.Classification, ClassTestFailure)
	}
	if got := outcome.FailureText(); got != "test_failure: fixture 3 expected denial" {
		t.Errorf("FailureText() = %q", got)
	}
}

func TestClient_Evaluate(t *testing.T) {
	var gotBody executeRequest
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/execute" {
			t.Errorf("path = %q, want /v1/execute", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(Verdict{
			Allowed:   false,
			Reason:    "inside blackout window",
			PolicyRef: "Section 3.2",
		})
	}))

	employee := rules.Employee{ID: "EMP-1", Role: "trader"}
	security := rules.SecurityContext{Ticker: "ACME", EarningsDate: "2026-09-03"}

	verdict, err := client.Evaluate(context.Background(), "# rule", employee, security, "2026-08-31")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if gotBody.Employee.ID != "EMP-1" || gotBody.Security.Ticker != "ACME" || gotBody.TradeDate != "2026-08-31" {
		t.Errorf("wire request = %+v", gotBody)
	}
	if verdict.Allowed || verdict.Reason != "inside blackout window" || verdict.PolicyRef != "Section 3.2" {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "worker crashed"})
			return
		}
		json.NewEncoder(w).Encode(Outcome{Passed: true})
	}))

	outcome, err := client.Validate(context.Background(), "# rule")
	if err != nil {
		t.Fatalf("Validate() error after retry: %v", err)
	}
	if !outcome.Passed {
		t.Error("Passed = false after successful retry")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "rule_source is required"})
	}))

	_, err := client.Validate(context.Background(), "")
	if err == nil {
		t.Fatal("Validate() error = nil, want rejection")
	}
	if !strings.Contains(err.Error(), "rule_source is required") {
		t.Errorf("error = %v, want sandbox message surfaced", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1 (4xx is not retryable)", got)
	}
}

func TestClient_ExhaustedRetriesReturnLastError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	// Zero retry budget keeps the test fast: one attempt, no backoff.
	client := NewClient(&Config{BaseURL: server.URL, Timeout: time.Second, MaxRetries: 0})

	_, err := client.Validate(context.Background(), "# rule")
	if err == nil {
		t.Fatal("Validate() error = nil, want server error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error = %v, want status surfaced", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1", got)
	}
}

func TestClient_ContextCancellationStopsRetries(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Validate(ctx, "# rule")
	if err == nil {
		t.Fatal("Validate() error = nil, want context error")
	}
	// The retry backoff must yield to the context instead of sleeping it out.
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Validate() blocked %v waiting on backoff", elapsed)
	}
}

func TestOutcome_FailureText(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{"passed", Outcome{Passed: true, Message: "ignored"}, ""},
		{"classified", Outcome{Classification: ClassSyntaxError, Message: "bad indent"}, "syntax_error: bad indent"},
		{"unclassified", Outcome{Message: "something broke"}, "something broke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.FailureText(); got != tt.want {
				t.Errorf("FailureText() = %q, want %q", got, tt.want)
			}
		})
	}
}
