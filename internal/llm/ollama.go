package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	ollamaBaseURL      = "http://localhost:11434"
	ollamaDefaultModel = "llama3.2"
)

// ollamaOracle categorizes tokens with a local Ollama server.
type ollamaOracle struct {
	httpClient   *http.Client
	baseURL      string
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system"`
	Prompt  string        `json:"prompt"`
	Options ollamaOptions `json:"options"`
	Stream  bool          `json:"stream"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func newOllamaOracle(cfg Config) *ollamaOracle {
	cfg = cfg.withDefaults(ollamaDefaultModel)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ollamaBaseURL
	}

	return &ollamaOracle{
		httpClient:   newHTTPClient(),
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		temperature:  *cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}
}

// Categorize sends the tokens to Ollama and returns the category name.
func (o *ollamaOracle) Categorize(ctx context.Context, tokens []string) (string, error) {
	request := ollamaRequest{
		Model:  o.model,
		System: o.systemPrompt,
		Prompt: userMessage(tokens),
		Options: ollamaOptions{
			Temperature: o.temperature,
			NumPredict:  o.maxTokens,
		},
	}

	var response ollamaResponse
	if err := postJSON(ctx, o.httpClient, o.baseURL+"/api/generate", nil, request, &response); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return cleanResponse(response.Response), nil
}
