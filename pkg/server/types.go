package server

import "mercator-hq/themis/pkg/rules"

// Stable error codes returned in API error responses.
const (
	CodeValidationError = "validation_error"
	CodeNotFound        = "not_found"
	CodeInternalError   = "internal_error"
)

// errorResponse is the JSON body for all API errors.
type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ingestRequest is the body for POST /api/v1/policies/ingest.
type ingestRequest struct {
	FirmName   string `json:"firm_name"`
	PolicyText string `json:"policy_text"`
}

// ingestRuleSummary summarizes one deployed rule in the ingest response.
type ingestRuleSummary struct {
	RuleName    string `json:"rule_name"`
	Description string `json:"description"`
	Attempts    int    `json:"attempts"`
	Validated   bool   `json:"validated"`
}

// ingestResponse is the body for a successful ingestion.
type ingestResponse struct {
	Status          string              `json:"status"`
	FirmName        string              `json:"firm_name"`
	RulesDeployed   int                 `json:"rules_deployed"`
	TotalIterations int                 `json:"total_iterations"`
	Rules           []ingestRuleSummary `json:"rules"`
}

// checkRequest is the body for POST /api/v1/compliance/check. Either
// Employee or EmployeeID must be set; either Ticker or Query must be
// set.
type checkRequest struct {
	FirmName   string          `json:"firm_name"`
	Employee   *rules.Employee `json:"employee,omitempty"`
	EmployeeID string          `json:"employee_id,omitempty"`
	Ticker     string          `json:"ticker,omitempty"`
	Action     string          `json:"action,omitempty"`
	Query      string          `json:"query,omitempty"`
	TradeDate  string          `json:"trade_date,omitempty"`
}

// checkResponse is the body for a completed compliance check.
type checkResponse struct {
	Status      string                  `json:"status"`
	FirmName    string                  `json:"firm_name"`
	EmployeeID  string                  `json:"employee_id"`
	ParsedQuery map[string]string       `json:"parsed_query,omitempty"`
	Compliance  *rules.ComplianceResult `json:"compliance"`
}

// healthResponse is the body for GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
}
