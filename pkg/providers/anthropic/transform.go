package anthropic

import (
	"fmt"

	"mercator-hq/themis/pkg/providers"
)

// Anthropic API request/response types

// AnthropicRequest represents an Anthropic messages request.
type AnthropicRequest struct {
	Model         string             `json:"model"`
	Messages      []AnthropicMessage `json:"messages"`
	System        string             `json:"system,omitempty"`
	MaxTokens     int                `json:"max_tokens"`
	Temperature   float64            `json:"temperature,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
}

// AnthropicMessage represents a message in Anthropic format.
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentBlock represents a content block in an Anthropic response.
type ContentBlock struct {
	Type string `json:"type"` // "text"
	Text string `json:"text,omitempty"`
}

// AnthropicResponse represents an Anthropic messages response.
type AnthropicResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Content      []ContentBlock `json:"content"`
	Model        string         `json:"model"`
	StopReason   string         `json:"stop_reason"`
	StopSequence string         `json:"stop_sequence,omitempty"`
	Usage        AnthropicUsage `json:"usage"`
}

// AnthropicUsage represents token usage in Anthropic format.
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// transformRequest transforms a provider-agnostic request to Anthropic format.
func transformRequest(req *providers.CompletionRequest) (*AnthropicRequest, error) {
	anthropicReq := &AnthropicRequest{
		Model:         req.Model,
		Messages:      make([]AnthropicMessage, 0, len(req.Messages)),
		System:        req.System,
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		StopSequences: req.Stop,
	}

	// max_tokens is required by Anthropic
	if anthropicReq.MaxTokens == 0 {
		anthropicReq.MaxTokens = 4096
	}

	// Anthropic takes the system prompt as a separate field
	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			anthropicReq.System = msg.Content
			continue
		}
		anthropicReq.Messages = append(anthropicReq.Messages, AnthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	if err := validateMessageSequence(anthropicReq.Messages); err != nil {
		return nil, err
	}

	return anthropicReq, nil
}

// validateMessageSequence validates that messages alternate between user and assistant.
func validateMessageSequence(messages []AnthropicMessage) error {
	if len(messages) == 0 {
		return nil
	}

	// First message must be from user
	if messages[0].Role != providers.RoleUser {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "first message must be from user (Anthropic requirement)",
		}
	}

	for i := 1; i < len(messages); i++ {
		if messages[i-1].Role == messages[i].Role {
			return &providers.ValidationError{
				Field:   "messages",
				Message: fmt.Sprintf("messages must alternate between user and assistant (Anthropic requirement), found consecutive %s messages at index %d", messages[i].Role, i),
			}
		}
	}

	return nil
}

// transformResponse transforms an Anthropic response to provider-agnostic format.
func transformResponse(resp *AnthropicResponse) (*providers.CompletionResponse, error) {
	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	if content == "" {
		return nil, fmt.Errorf("response did not contain text content")
	}

	return &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      content,
		FinishReason: transformStopReason(resp.StopReason),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

// transformStopReason maps Anthropic stop reasons to provider-agnostic ones.
func transformStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return providers.FinishReasonStop
	case "max_tokens":
		return providers.FinishReasonLength
	default:
		return reason
	}
}
