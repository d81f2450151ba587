package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrMalformedRow marks a CSV row that cannot become a transaction.
// Malformed rows are logged and skipped; they never fail a read.
var ErrMalformedRow = errors.New("malformed row")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// CSVReader reads headerless bank exports with the columns
// date, description, debit amount, credit amount.
type CSVReader struct {
	logger   *slog.Logger
	location string
}

// NewCSVReader creates a reader for a local path or gs:// URI.
func NewCSVReader(location string, logger *slog.Logger) *CSVReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVReader{location: location, logger: logger}
}

// ReadTransactions reads every well-formed row in file order.
func (r *CSVReader) ReadTransactions(ctx context.Context) ([]model.Transaction, error) {
	f, err := Open(ctx, r.location)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	transactions, err := r.parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	r.logger.Info("Read ledger", "source", r.location, "transactions", len(transactions))
	return transactions, nil
}

func (r *CSVReader) parse(in io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	var transactions []model.Transaction

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			r.logger.Warn("Skipping malformed row", "line", parseErr.Line, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		txn, ok, err := parseRow(record, r.rowID(line))
		if err != nil {
			r.logger.Warn("Skipping malformed row", "line", line, "row", record, "error", err)
			continue
		}
		if ok {
			transactions = append(transactions, txn)
		}
	}

	return transactions, nil
}

func (r *CSVReader) rowID(line int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s#%d", r.location, line)).String()
}

// parseRow converts one record. ok is false for blank rows, which are
// skipped without a warning.
func parseRow(record []string, id string) (txn model.Transaction, ok bool, err error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	dateField, descField := field(0), field(1)
	debitField, creditField := field(2), field(3)

	if dateField == "" || descField == "" {
		return model.Transaction{}, false, nil
	}

	date, err := parseDate(dateField)
	if err != nil {
		return model.Transaction{}, false, err
	}

	description, err := model.NewDescription(descField)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}

	var amount model.Amount
	switch {
	case debitField != "":
		value, err := decimal.NewFromString(debitField)
		if err != nil {
			return model.Transaction{}, false, fmt.Errorf("%w: invalid debit amount %q", ErrMalformedRow, debitField)
		}
		amount = model.Debit(value)
	case creditField != "":
		value, err := decimal.NewFromString(creditField)
		if err != nil {
			return model.Transaction{}, false, fmt.Errorf("%w: invalid credit amount %q", ErrMalformedRow, creditField)
		}
		amount = model.Credit(value)
	default:
		amount = model.Credit(decimal.Zero)
	}

	return model.NewTransaction(id, date, description, amount), true, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date format %q", ErrMalformedRow, value)
}
