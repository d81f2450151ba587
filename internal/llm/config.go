package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
)

// Default request parameters. Replies are a single category name, so the
// token budget stays small.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 50
)

// Config describes one oracle.
type Config struct {
	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	// Temperature is nil for the provider default; zero is a valid choice.
	Temperature *float64
	MaxTokens   int
	// RateLimit caps requests per minute. Zero disables throttling.
	RateLimit int
	// Count is the number of identical oracles to register. Zero means one.
	Count int
}

// Validate reports configuration problems that would make the oracle unusable.
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("%w: %s API key is required", common.ErrMissingConfig, c.Provider)
		}
	case config.ProviderOllama:
	case "":
		return fmt.Errorf("%w: provider is required", common.ErrMissingConfig)
	default:
		return fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, c.Provider)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative, got %d", common.ErrInvalidConfig, c.RateLimit)
	}
	if c.Count < 0 {
		return fmt.Errorf("%w: count must not be negative, got %d", common.ErrInvalidConfig, c.Count)
	}
	return nil
}

func (c Config) withDefaults(model string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultPrompt()
	}
	return c
}
