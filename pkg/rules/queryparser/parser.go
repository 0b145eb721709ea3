// Package queryparser extracts a structured trade request from a
// natural-language question ("can I buy TSLA tomorrow?") using the
// completion provider. The provider must answer with a bare JSON object;
// markdown fences around it are tolerated and stripped.
package queryparser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/themis/pkg/providers"
	"mercator-hq/themis/pkg/rules"
)

// ParsedQuery is the structured trade request extracted from free text.
type ParsedQuery struct {
	// Ticker is the security symbol, upper-cased.
	Ticker string `json:"ticker"`

	// Action is the requested action ("buy", "sell").
	Action string `json:"action"`

	// TradeDate is the requested trade date (YYYY-MM-DD), if stated.
	TradeDate string `json:"trade_date,omitempty"`
}

// Parser extracts trade requests from natural-language queries.
type Parser struct {
	provider providers.Provider
	model    string
	logger   *slog.Logger
}

// New creates a query parser backed by the given completion provider.
func New(provider providers.Provider, model string) *Parser {
	if model == "" {
		model = provider.GetConfig().Model
	}
	return &Parser{
		provider: provider,
		model:    model,
		logger:   slog.Default().With("component", "rules.queryparser"),
	}
}

const systemPrompt = `You extract trade requests from employee questions at a financial firm.
Respond ONLY with a JSON object of the form
{"ticker": "<symbol>", "action": "buy" or "sell", "trade_date": "YYYY-MM-DD" or ""}.
No markdown, no commentary. If no ticker is identifiable, use an empty ticker.`

// Parse extracts the trade request from the query text.
func (p *Parser) Parse(ctx context.Context, query string) (*ParsedQuery, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &rules.RequestValidationError{Field: "query", Message: "query is required"}
	}

	req := &providers.CompletionRequest{
		Model:     p.model,
		System:    systemPrompt,
		MaxTokens: 200,
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: query},
		},
	}

	resp, err := p.provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query parse request failed: %w", err)
	}

	parsed, err := decodeResponse(resp.Content)
	if err != nil {
		p.logger.Warn("unparseable query parse response",
			"error", err,
		)
		return nil, &rules.RequestValidationError{
			Field:   "query",
			Message: "unable to interpret the natural language query",
		}
	}

	if parsed.Ticker == "" {
		return nil, &rules.RequestValidationError{
			Field:   "query",
			Message: "no security ticker identified in query",
		}
	}

	parsed.Ticker = strings.ToUpper(parsed.Ticker)
	parsed.Action = strings.ToLower(parsed.Action)
	return parsed, nil
}

// decodeResponse unmarshals the provider's answer, stripping markdown code
// fences when the model added them despite instructions.
func decodeResponse(content string) (*ParsedQuery, error) {
	text := strings.TrimSpace(content)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var parsed ParsedQuery
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return &parsed, nil
}
