package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/llm"
)

// oracleConfigs maps oracle settings to provider configs sharing one
// system prompt.
func oracleConfigs(settings []config.OracleSettings, prompt string) []llm.Config {
	cfgs := make([]llm.Config, len(settings))
	for i, s := range settings {
		cfgs[i] = llm.Config{
			Provider:     s.Provider,
			APIKey:       s.APIKey,
			Model:        s.Model,
			BaseURL:      s.BaseURL,
			SystemPrompt: prompt,
			Temperature:  s.Temperature,
			MaxTokens:    s.MaxTokens,
			RateLimit:    s.RateLimit,
			Count:        s.Count,
		}
	}
	return cfgs
}

// buildOracles resolves the oracle settings and builds one oracle per
// replica, all sharing the loaded system prompt.
func (a *app) buildOracles(ctx context.Context) ([]engine.Oracle, error) {
	settings, err := config.LoadOracles(a.v)
	if err != nil {
		return nil, err
	}
	return buildOracles(ctx, a.settings.PromptFile, settings)
}

func buildOracles(ctx context.Context, promptFile string, settings []config.OracleSettings) ([]engine.Oracle, error) {
	prompt := llm.DefaultPrompt()
	if promptFile != "" {
		loaded, err := llm.LoadPrompt(promptFile)
		if err != nil {
			return nil, err
		}
		prompt = loaded
	}

	oracles, err := llm.NewOracles(ctx, oracleConfigs(settings, prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to create oracles: %w", err)
	}
	return oracles, nil
}
