package engine

import (
	"context"
	"strings"
	"sync"
)

// MockOracle is a test implementation of the Oracle interface.
// It answers deterministically from keyword rules and records every call.
type MockOracle struct {
	Err      error
	Rules    map[string]string // token -> category
	Fallback string
	calls    [][]string
	mu       sync.Mutex
}

// NewMockOracle creates a mock oracle with the default keyword rules.
func NewMockOracle() *MockOracle {
	return &MockOracle{
		Rules: map[string]string{
			"starbucks":  "Food & Dining",
			"coffee":     "Food & Dining",
			"restaurant": "Food & Dining",
			"grocery":    "Groceries",
			"salary":     "Salary",
			"e-transfer": "E-Transfer payment",
			"atm":        "ATM Cash withdrawals",
		},
		Fallback: "Other",
	}
}

// FixedOracle returns a mock that always answers category.
func FixedOracle(category string) *MockOracle {
	return &MockOracle{Fallback: category}
}

// FailingOracle returns a mock that always fails with err.
func FailingOracle(err error) *MockOracle {
	return &MockOracle{Err: err}
}

// Categorize returns the category of the first token with a rule.
func (m *MockOracle) Categorize(ctx context.Context, tokens []string) (string, error) {
	m.mu.Lock()
	recorded := make([]string, len(tokens))
	copy(recorded, tokens)
	m.calls = append(m.calls, recorded)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}

	for _, token := range tokens {
		if category, ok := m.Rules[strings.ToLower(token)]; ok {
			return category, nil
		}
	}
	return m.Fallback, nil
}

// Calls returns the token lists this oracle has been asked about.
func (m *MockOracle) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([][]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of Categorize calls.
func (m *MockOracle) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
