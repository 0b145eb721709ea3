package openai

import (
	"fmt"

	"mercator-hq/themis/pkg/providers"
)

// OpenAI API request/response types

// ChatRequest represents a Chat Completions request.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

// ChatMessage represents a message in OpenAI format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse represents a Chat Completions response.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice represents a completion choice.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage represents token usage in OpenAI format.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// transformRequest transforms a provider-agnostic request to OpenAI format.
// The system prompt becomes the leading system message.
func transformRequest(req *providers.CompletionRequest) *ChatRequest {
	openaiReq := &ChatRequest{
		Model:       req.Model,
		Messages:    make([]ChatMessage, 0, len(req.Messages)+1),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stop:        req.Stop,
	}

	if req.System != "" {
		openaiReq.Messages = append(openaiReq.Messages, ChatMessage{
			Role:    providers.RoleSystem,
			Content: req.System,
		})
	}

	for _, msg := range req.Messages {
		openaiReq.Messages = append(openaiReq.Messages, ChatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return openaiReq
}

// transformResponse transforms an OpenAI response to provider-agnostic format.
func transformResponse(resp *ChatResponse) (*providers.CompletionResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response did not contain any choices")
	}

	choice := resp.Choices[0]

	return &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
