package engine

import (
	"github.com/Veraticus/tally/internal/model"
)

// Group is a set of transactions sharing one token signature.
type Group struct {
	Signature    string
	Tokens       []string // tokens of the first member
	Transactions []model.Transaction
}

// GroupBySignature partitions transactions by token signature. Groups come
// out in the order their signature first appears and keep input order
// inside each group.
func GroupBySignature(transactions []model.Transaction) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, txn := range transactions {
		tokens := Tokens(txn)
		sig := Signature(tokens)

		i, ok := index[sig]
		if !ok {
			i = len(groups)
			index[sig] = i
			groups = append(groups, Group{
				Signature: sig,
				Tokens:    tokens,
			})
		}

		groups[i].Transactions = append(groups[i].Transactions, txn)
	}

	return groups
}
