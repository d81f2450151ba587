package llm

import (
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when a provider response carries no text
// candidate at all.
var ErrEmptyResponse = errors.New("empty response from model")

// userMessage renders the tokens of a group as the user turn.
func userMessage(tokens []string) string {
	return strings.Join(tokens, ", ")
}

// cleanResponse trims a reply down to the category name, dropping a
// markdown fence a model may add despite instructions. A blank reply stays
// blank.
func cleanResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
