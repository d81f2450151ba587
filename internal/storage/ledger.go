package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run is one persisted write of a categorized ledger.
type Run struct {
	CreatedAt        time.Time
	ID               string
	TransactionCount int
}

// WriteTransactions stores the ledger as a new run. All rows land in one
// database transaction, so a failed write leaves no partial run behind.
func (s *SQLiteStorage) WriteTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, transaction_count, created_at) VALUES (?, ?, ?)`,
		runID, len(transactions), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_entries (run_id, position, transaction_id, date, description, debit, credit, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range transactions {
		debit, credit := storedAmounts(txn.Amount)
		if _, err := stmt.ExecContext(ctx, runID, i, txn.ID,
			txn.Date.Format(ledger.DateFormat), txn.Description.String(),
			debit, credit, txn.CategoryName()); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	slog.Info("Stored ledger", "database", s.dbPath, "run", runID, "transactions", len(transactions))
	return nil
}

// Runs lists stored runs, newest first.
func (s *SQLiteStorage) Runs(ctx context.Context) ([]Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transaction_count, created_at FROM runs ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.TransactionCount, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run.
func (s *SQLiteStorage) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrRunNotFound
	}
	return runs[0], nil
}

// Entries returns the transactions of a run in their written order.
func (s *SQLiteStorage) Entries(ctx context.Context, runID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, date, description, debit, credit, category
		FROM ledger_entries WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var id, date, description, debit, credit, category string
		if err := rows.Scan(&id, &date, &description, &debit, &credit, &category); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		txn, err := entryToTransaction(id, date, description, debit, credit, category)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", id, err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// ReadTransactions returns the entries of the latest run, so a database can
// feed another categorization pass.
func (s *SQLiteStorage) ReadTransactions(ctx context.Context) ([]model.Transaction, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	return s.Entries(ctx, run.ID)
}

// storedAmounts keeps the exact decimal value. Rounding to cents is left to
// display writers.
func storedAmounts(amount model.Amount) (debit, credit string) {
	if amount.IsNegative() {
		return amount.Magnitude().String(), ""
	}
	return "", amount.Value().String()
}

func entryToTransaction(id, date, description, debit, credit, category string) (model.Transaction, error) {
	parsedDate, err := time.Parse(ledger.DateFormat, date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	desc, err := model.NewDescription(description)
	if err != nil {
		return model.Transaction{}, err
	}

	var amount model.Amount
	if debit != "" {
		value, err := decimal.NewFromString(debit)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("invalid debit %q: %w", debit, err)
		}
		amount = model.Debit(value)
	} else {
		value, err := decimal.NewFromString(credit)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("invalid credit %q: %w", credit, err)
		}
		amount = model.Credit(value)
	}

	txn := model.NewTransaction(id, parsedDate, desc, amount)
	if category != "" {
		txn = txn.WithCategory(model.NewCategory(category))
	}
	return txn, nil
}
