package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mercator-hq/themis/pkg/rules"
	"mercator-hq/themis/pkg/rules/queryparser"
)

// Ingestor converts a policy document into a deployed rule set.
type Ingestor interface {
	ProcessPolicy(ctx context.Context, policyText, firmName string) (*rules.RuleSet, error)
}

// ComplianceChecker evaluates a proposed trade against a firm's rules.
type ComplianceChecker interface {
	CheckCompliance(ctx context.Context, firmName string, employee rules.Employee, security rules.SecurityContext, tradeDate string) (*rules.ComplianceResult, error)
}

// QueryParser extracts trade details from a natural-language query.
type QueryParser interface {
	Parse(ctx context.Context, query string) (*queryparser.ParsedQuery, error)
}

// EmployeeDirectory resolves employee IDs to employee records.
type EmployeeDirectory interface {
	Lookup(id string) (*rules.Employee, error)
}

// APIMetrics receives API-level telemetry.
type APIMetrics interface {
	RecordIngestion(status string, duration time.Duration)
	RecordComplianceCheck(decision string, duration time.Duration)
}

type noopAPIMetrics struct{}

func (noopAPIMetrics) RecordIngestion(string, time.Duration)       {}
func (noopAPIMetrics) RecordComplianceCheck(string, time.Duration) {}

// Handlers carries the dependencies behind the API endpoints. Directory
// and Parser are optional; requests that need a missing collaborator
// are rejected with a validation error.
type Handlers struct {
	Ingestor  Ingestor
	Checker   ComplianceChecker
	Directory EmployeeDirectory
	Parser    QueryParser
	Metrics   APIMetrics
	Logger    *slog.Logger
}

func (h *Handlers) metrics() APIMetrics {
	if h.Metrics == nil {
		return noopAPIMetrics{}
	}
	return h.Metrics
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// handleIngest implements POST /api/v1/policies/ingest.
func (h *Handlers) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, CodeValidationError, "method not allowed")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body")
		return
	}

	start := time.Now()
	ruleSet, err := h.Ingestor.ProcessPolicy(r.Context(), req.PolicyText, req.FirmName)
	if err != nil {
		h.metrics().RecordIngestion("error", time.Since(start))

		var verr *rules.RequestValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, CodeValidationError, verr.Error())
			return
		}

		// Persistence and generation details stay in the logs.
		h.logger().ErrorContext(r.Context(), "policy ingestion failed",
			"firm_name", req.FirmName,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "policy ingestion failed")
		return
	}
	h.metrics().RecordIngestion("success", time.Since(start))

	summaries := make([]ingestRuleSummary, 0, len(ruleSet.Rules))
	for _, rule := range ruleSet.Rules {
		summaries = append(summaries, ingestRuleSummary{
			RuleName:    rule.RuleName,
			Description: rule.Description,
			Attempts:    rule.GenerationAttempt,
			Validated:   rule.Active,
		})
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Status:          "success",
		FirmName:        ruleSet.FirmName,
		RulesDeployed:   len(ruleSet.Rules),
		TotalIterations: ruleSet.TotalIterations,
		Rules:           summaries,
	})
}

// handleCheck implements POST /api/v1/compliance/check.
func (h *Handlers) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, CodeValidationError, "method not allowed")
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body")
		return
	}

	if req.FirmName == "" {
		writeError(w, http.StatusBadRequest, CodeValidationError, "firm_name is required")
		return
	}

	employee, err := h.resolveEmployee(&req)
	if err != nil {
		if rules.IsNotFound(err) {
			writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	security, parsedQuery, err := h.resolveSecurity(r.Context(), &req)
	if err != nil {
		var verr *rules.RequestValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, CodeValidationError, verr.Error())
			return
		}
		h.logger().ErrorContext(r.Context(), "query parsing failed",
			"firm_name", req.FirmName,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "query parsing failed")
		return
	}

	tradeDate := req.TradeDate
	if tradeDate == "" && parsedQuery != nil {
		tradeDate = parsedQuery["trade_date"]
	}
	if tradeDate == "" {
		tradeDate = time.Now().UTC().Format("2006-01-02")
	}

	start := time.Now()
	result, err := h.Checker.CheckCompliance(r.Context(), req.FirmName, *employee, *security, tradeDate)
	if err != nil {
		// Rule execution failures are folded into denials by the
		// executor; an error here is infrastructure trouble.
		h.logger().ErrorContext(r.Context(), "compliance check failed",
			"firm_name", req.FirmName,
			"employee_id", employee.ID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "compliance check failed")
		return
	}

	decision := "denied"
	if result.Allowed {
		decision = "allowed"
	}
	h.metrics().RecordComplianceCheck(decision, time.Since(start))

	writeJSON(w, http.StatusOK, checkResponse{
		Status:      "success",
		FirmName:    req.FirmName,
		EmployeeID:  employee.ID,
		ParsedQuery: parsedQuery,
		Compliance:  result,
	})
}

// resolveEmployee picks the inline employee record or resolves the
// employee ID through the directory.
func (h *Handlers) resolveEmployee(req *checkRequest) (*rules.Employee, error) {
	if req.Employee != nil {
		if req.Employee.ID == "" {
			return nil, &rules.RequestValidationError{Field: "employee.id", Message: "employee ID is required"}
		}
		return req.Employee, nil
	}

	if req.EmployeeID == "" {
		return nil, &rules.RequestValidationError{Field: "employee", Message: "employee or employee_id is required"}
	}
	if h.Directory == nil {
		return nil, &rules.RequestValidationError{Field: "employee_id", Message: "employee directory is not configured"}
	}
	return h.Directory.Lookup(req.EmployeeID)
}

// resolveSecurity builds the security context from an explicit ticker
// or a natural-language query.
func (h *Handlers) resolveSecurity(ctx context.Context, req *checkRequest) (*rules.SecurityContext, map[string]string, error) {
	if req.Ticker != "" {
		return &rules.SecurityContext{
			Ticker:          strings.ToUpper(strings.TrimSpace(req.Ticker)),
			RequestedAction: req.Action,
		}, nil, nil
	}

	if req.Query == "" {
		return nil, nil, &rules.RequestValidationError{Field: "ticker", Message: "ticker or query is required"}
	}
	if h.Parser == nil {
		return nil, nil, &rules.RequestValidationError{Field: "query", Message: "query parsing is not configured"}
	}

	parsed, err := h.Parser.Parse(ctx, req.Query)
	if err != nil {
		return nil, nil, err
	}

	parsedQuery := map[string]string{
		"ticker": parsed.Ticker,
		"action": parsed.Action,
	}
	if parsed.TradeDate != "" {
		parsedQuery["trade_date"] = parsed.TradeDate
	}

	return &rules.SecurityContext{
		Ticker:          parsed.Ticker,
		RequestedAction: parsed.Action,
		ParsedQuery:     parsedQuery,
	}, parsedQuery, nil
}

// handleHealth implements GET /healthz.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}
