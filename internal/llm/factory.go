package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/engine"
)

// NewOracle creates one oracle from cfg, throttled when cfg.RateLimit is set.
func NewOracle(ctx context.Context, cfg Config) (engine.Oracle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		oracle engine.Oracle
		err    error
	)

	switch strings.ToLower(cfg.Provider) {
	case config.ProviderOpenAI:
		oracle, err = newOpenAIOracle(cfg)
	case config.ProviderAnthropic:
		oracle, err = newAnthropicOracle(cfg)
	case config.ProviderGemini:
		oracle, err = newGeminiOracle(ctx, cfg)
	case config.ProviderOllama:
		oracle = newOllamaOracle(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRateLimit(oracle, cfg.RateLimit), nil
}

// NewOracles creates the oracle set in registration order. Each config
// contributes Count oracles (at least one).
func NewOracles(ctx context.Context, cfgs []Config) ([]engine.Oracle, error) {
	var oracles []engine.Oracle

	for i, cfg := range cfgs {
		count := cfg.Count
		if count == 0 {
			count = 1
		}

		for range count {
			oracle, err := NewOracle(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("oracle %d (%s): %w", i, cfg.Provider, err)
			}
			oracles = append(oracles, oracle)
		}
	}

	return oracles, nil
}
