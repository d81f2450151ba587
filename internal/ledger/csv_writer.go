package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/tally/internal/model"
)

// DateFormat is the date layout of written ledgers.
const DateFormat = "2006-01-02"

// Header returns the column titles of a written ledger.
func Header() []string {
	return []string{"Date", "Description", "Debit Amount", "Credit Amount", "Category"}
}

// Record renders one transaction as a row under Header. Exactly one of the
// amount columns is filled.
func Record(txn model.Transaction) []string {
	var debit, credit string
	if txn.Amount.IsNegative() {
		debit = txn.Amount.Magnitude().StringFixed(2)
	} else {
		credit = txn.Amount.Value().StringFixed(2)
	}

	return []string{
		txn.Date.Format(DateFormat),
		txn.Description.String(),
		debit,
		credit,
		txn.CategoryName(),
	}
}

// CSVWriter writes a tagged ledger to a local path or gs:// URI.
type CSVWriter struct {
	logger   *slog.Logger
	location string
}

// NewCSVWriter creates a writer for location.
func NewCSVWriter(location string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{location: location, logger: logger}
}

// WriteTransactions replaces the destination with a header and one row per
// transaction.
func (w *CSVWriter) WriteTransactions(ctx context.Context, transactions []model.Transaction) error {
	out, err := Create(ctx, w.location)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	if err := Encode(out, transactions); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close CSV file: %w", err)
	}

	w.logger.Info("Wrote ledger", "destination", w.location, "transactions", len(transactions))
	return nil
}

// Encode writes the header and rows to out.
func Encode(out io.Writer, transactions []model.Transaction) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, txn := range transactions {
		if err := cw.Write(Record(txn)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
