// Package testutil provides ledger fixtures and in-memory readers and
// writers for tests. It imports only model so any package can use it.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// Date parses a YYYY-MM-DD literal or fails the test.
func Date(t *testing.T, value string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("invalid fixture date %q: %v", value, err)
	}
	return d
}

// DebitTxn builds a debit transaction. amount is a decimal literal.
func DebitTxn(t *testing.T, id, date, description, amount string) model.Transaction {
	t.Helper()
	return model.NewTransaction(id, Date(t, date), mustDescription(t, description), model.Debit(decimal.RequireFromString(amount)))
}

// CreditTxn builds a credit transaction. amount is a decimal literal.
func CreditTxn(t *testing.T, id, date, description, amount string) model.Transaction {
	t.Helper()
	return model.NewTransaction(id, Date(t, date), mustDescription(t, description), model.Credit(decimal.RequireFromString(amount)))
}

func mustDescription(t *testing.T, value string) model.Description {
	t.Helper()

	d, err := model.NewDescription(value)
	if err != nil {
		t.Fatalf("invalid fixture description %q: %v", value, err)
	}
	return d
}

// MemoryReader serves a fixed ledger.
type MemoryReader struct {
	Err          error
	Transactions []model.Transaction
	calls        int
	mu           sync.Mutex
}

// ReadTransactions returns the configured ledger.
func (r *MemoryReader) ReadTransactions(_ context.Context) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.Transaction, len(r.Transactions))
	copy(out, r.Transactions)
	return out, nil
}

// Calls returns how many times the ledger was read.
func (r *MemoryReader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// MemoryWriter captures written ledgers.
type MemoryWriter struct {
	Err     error
	Written [][]model.Transaction
	mu      sync.Mutex
}

// WriteTransactions records transactions.
func (w *MemoryWriter) WriteTransactions(_ context.Context, transactions []model.Transaction) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.Err != nil {
		return w.Err
	}
	w.Written = append(w.Written, transactions)
	return nil
}

// Last returns the most recently written ledger or fails the test.
func (w *MemoryWriter) Last(t *testing.T) []model.Transaction {
	t.Helper()

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.Written) == 0 {
		t.Fatal("nothing was written")
	}
	return w.Written[len(w.Written)-1]
}

// Calls returns how many times the writer was invoked.
func (w *MemoryWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Written)
}

// CategoryNames lists the category name of each transaction.
func CategoryNames(transactions []model.Transaction) []string {
	names := make([]string, len(transactions))
	for i, txn := range transactions {
		names[i] = txn.CategoryName()
	}
	return names
}

// IDs lists the ID of each transaction.
func IDs(transactions []model.Transaction) []string {
	ids := make([]string, len(transactions))
	for i, txn := range transactions {
		ids[i] = txn.ID
	}
	return ids
}

// Sequence builds n debit transactions with numbered descriptions that all
// share one signature.
func Sequence(t *testing.T, n int, description string) []model.Transaction {
	t.Helper()

	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = DebitTxn(t, fmt.Sprintf("seq-%d", i), "2024-01-01",
			fmt.Sprintf("%s %d", description, 100000+i), "1.00")
	}
	return txns
}
