package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicDefaultModel = "claude-sonnet-4-20250514"
	anthropicVersion      = "2023-06-01"
)

// anthropicOracle categorizes tokens with the Anthropic Messages API.
type anthropicOracle struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func newAnthropicOracle(cfg Config) (*anthropicOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	cfg = cfg.withDefaults(anthropicDefaultModel)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	return &anthropicOracle{
		httpClient:   newHTTPClient(),
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		temperature:  *cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

// Categorize sends the tokens to Anthropic and returns the category name.
func (o *anthropicOracle) Categorize(ctx context.Context, tokens []string) (string, error) {
	request := anthropicRequest{
		Model:       o.model,
		System:      o.systemPrompt,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: userMessage(tokens)},
		},
	}
	headers := map[string]string{
		"x-api-key":         o.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var response anthropicResponse
	if err := postJSON(ctx, o.httpClient, o.baseURL+"/v1/messages", headers, request, &response); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	for _, block := range response.Content {
		if block.Type == "text" {
			return cleanResponse(block.Text), nil
		}
	}
	return "", fmt.Errorf("anthropic: %w", ErrEmptyResponse)
}
