package engine

import (
	"context"
)

// Oracle maps the tokens of a transaction group to a category name.
// Implementations return the name trimmed of surrounding whitespace.
type Oracle interface {
	Categorize(ctx context.Context, tokens []string) (string, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, tokens []string) (string, error)

// Categorize calls f.
func (f OracleFunc) Categorize(ctx context.Context, tokens []string) (string, error) {
	return f(ctx, tokens)
}
