package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.5-flash"

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// geminiOracle categorizes tokens with the Gemini API.
type geminiOracle struct {
	generate     generateFunc
	model        string
	systemPrompt string
	temperature  float32
	maxTokens    int32
}

func newGeminiOracle(ctx context.Context, cfg Config) (*geminiOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cfg = cfg.withDefaults(geminiDefaultModel)

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(),
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiOracleWithGenerate(cfg, client.Models.GenerateContent), nil
}

func newGeminiOracleWithGenerate(cfg Config, generate generateFunc) *geminiOracle {
	cfg = cfg.withDefaults(geminiDefaultModel)
	return &geminiOracle{
		generate:     generate,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		temperature:  float32(*cfg.Temperature),
		maxTokens:    int32(cfg.MaxTokens),
	}
}

// Categorize sends the tokens to Gemini and returns the category name.
func (o *geminiOracle) Categorize(ctx context.Context, tokens []string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(o.systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(o.temperature),
		MaxOutputTokens:   o.maxTokens,
	}

	resp, err := o.generate(ctx, o.model, genai.Text(userMessage(tokens)), config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return cleanResponse(resp.Text()), nil
}
