package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/tally/internal/config"
)

//go:embed prompts/categorization.txt
var defaultPrompt string

// DefaultPrompt returns the built-in system prompt.
func DefaultPrompt() string {
	return strings.TrimSpace(defaultPrompt)
}

// LoadPrompt reads a system prompt from path. An empty path yields the
// built-in prompt. The CLI calls this once and hands the text to every
// oracle through Config.SystemPrompt.
func LoadPrompt(path string) (string, error) {
	if path == "" {
		return DefaultPrompt(), nil
	}

	expanded := config.ExpandPath(path)
	data, err := os.ReadFile(expanded) // #nosec G304 -- user-provided prompt file
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", expanded, err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt file %s is empty", expanded)
	}
	return prompt, nil
}
