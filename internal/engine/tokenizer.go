package engine

import (
	"sort"
	"strings"

	"github.com/Veraticus/tally/internal/model"
)

// Transaction type markers that lead every token list.
const (
	DebitMarker  = "debit"
	CreditMarker = "credit"
)

// Tokens returns the lowercase tokens used to group txn. Tokens carrying a
// digit (reference numbers, store ids) or an "@" (email addresses) are
// dropped. Everything else, punctuation included, is kept in description
// order behind the debit/credit marker.
func Tokens(txn model.Transaction) []string {
	marker := CreditMarker
	if txn.Amount.IsNegative() {
		marker = DebitMarker
	}

	fields := strings.Fields(txn.Description.String())
	tokens := make([]string, 0, len(fields)+1)
	tokens = append(tokens, marker)

	for _, field := range fields {
		if hasDigit(field) || strings.Contains(field, "@") {
			continue
		}
		tokens = append(tokens, strings.ToLower(field))
	}

	return tokens
}

// Signature collapses tokens into an order-insensitive grouping key.
func Signature(tokens []string) string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
