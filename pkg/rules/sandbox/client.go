package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"mercator-hq/themis/pkg/rules"
)

// Harness is the execution capability the pipeline and executor depend on.
// The HTTP Client below is the production implementation; tests substitute
// scripted fakes.
type Harness interface {
	// Validate runs the rule source against the sandbox fixtures and
	// returns the classified outcome. A non-nil error means the sandbox
	// itself was unreachable or failed out-of-band, not that the rule
	// failed validation.
	Validate(ctx context.Context, ruleSource string) (*Outcome, error)

	// Evaluate invokes the rule source against a live trade request and
	// returns its verdict.
	Evaluate(ctx context.Context, ruleSource string, employee rules.Employee, security rules.SecurityContext, tradeDate string) (*Verdict, error)
}

// Config contains configuration for the sandbox client.
type Config struct {
	// BaseURL is the sandbox service endpoint.
	BaseURL string

	// Timeout is the per-request timeout. A sandbox round trip covers
	// scheduling an isolated run, so the default is generous: 60s.
	Timeout time.Duration

	// MaxRetries is the retry budget for transient (5xx, network)
	// failures. Default: 2.
	MaxRetries int
}

// DefaultConfig returns the default sandbox client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "http://127.0.0.1:8481",
		Timeout:    60 * time.Second,
		MaxRetries: 2,
	}
}

// Client is the HTTP client for the sandbox service.
type Client struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a sandbox client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "rules.sandbox"),
	}
}

// Validate implements Harness.
func (c *Client) Validate(ctx context.Context, ruleSource string) (*Outcome, error) {
	var outcome Outcome
	err := c.doJSON(ctx, "/v1/validate", validateRequest{RuleSource: ruleSource}, &outcome)
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// Evaluate implements Harness.
func (c *Client) Evaluate(ctx context.Context, ruleSource string, employee rules.Employee, security rules.SecurityContext, tradeDate string) (*Verdict, error) {
	req := executeRequest{
		RuleSource: ruleSource,
		Employee:   employee,
		Security:   security,
		TradeDate:  tradeDate,
	}

	var verdict Verdict
	if err := c.doJSON(ctx, "/v1/execute", req, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

// doJSON posts a JSON request and decodes the JSON response, retrying
// transient failures with exponential backoff.
func (c *Client) doJSON(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal sandbox request: %w", err)
	}

	url := c.config.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			c.logger.Debug("retrying sandbox request",
				"path", path,
				"attempt", attempt,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create sandbox request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			c.logger.Warn("sandbox request failed, will retry",
				"path", path,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read sandbox response: %w", readErr)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if err := json.Unmarshal(body, respBody); err != nil {
				return fmt.Errorf("failed to decode sandbox response: %w", err)
			}
			return nil

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("sandbox returned status %d: %s", resp.StatusCode, sandboxError(body))
			c.logger.Warn("sandbox returned server error, will retry",
				"path", path,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)

		default:
			// Client errors are not retryable
			return fmt.Errorf("sandbox rejected request (status %d): %s", resp.StatusCode, sandboxError(body))
		}
	}

	return lastErr
}

// sandboxError extracts the error message from a sandbox error body.
func sandboxError(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return string(body)
}
