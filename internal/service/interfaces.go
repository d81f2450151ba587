// Package service defines the ports between the categorization engine and
// the ledger sources and destinations around it.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// TransactionReader loads the full ledger to categorize.
type TransactionReader interface {
	ReadTransactions(ctx context.Context) ([]model.Transaction, error)
}

// TransactionWriter persists the categorized ledger.
type TransactionWriter interface {
	WriteTransactions(ctx context.Context, transactions []model.Transaction) error
}

// CompletionStats shows the results of a categorization run.
type CompletionStats struct {
	TotalTransactions int
	Groups            int
	OracleCalls       int
	Disagreements     int
	Duration          time.Duration
}

// RetryOptions configures retry behavior for collaborator I/O.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
