package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter(t *testing.T) {
	txns := []model.Transaction{
		testutil.DebitTxn(t, "1", "2023-01-15", "STARBUCKS COFFEE", "4.5").WithCategory(model.NewCategory("Food & Dining")),
		testutil.CreditTxn(t, "2", "2023-01-16", "SALARY DEPOSIT", "2500").WithCategory(model.NewCategory("Salary")),
		testutil.DebitTxn(t, "3", "2023-01-17", "Payment to Smith, John", "100"),
	}

	path := filepath.Join(t.TempDir(), "out", "categorized.csv")
	require.NoError(t, NewCSVWriter(path, nil).WriteTransactions(context.Background(), txns))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Date,Description,Debit Amount,Credit Amount,Category",
		"2023-01-15,STARBUCKS COFFEE,4.50,,Food & Dining",
		"2023-01-16,SALARY DEPOSIT,,2500.00,Salary",
		`2023-01-17,"Payment to Smith, John",100.00,,`,
		"",
	}, "\n")
	assert.Equal(t, want, string(data))
}

func TestCSVWriterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content\nmore stale content\n"), 0o600))

	require.NoError(t, NewCSVWriter(path, nil).WriteTransactions(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Debit Amount,Credit Amount,Category\n", string(data))
}

func TestRecordHasExactlyOneAmount(t *testing.T) {
	tests := []struct {
		name       string
		txn        model.Transaction
		wantDebit  string
		wantCredit string
	}{
		{name: "debit", txn: testutil.DebitTxn(t, "1", "2023-01-01", "Coffee", "4.5"), wantDebit: "4.50"},
		{name: "credit", txn: testutil.CreditTxn(t, "2", "2023-01-01", "Refund", "12.345"), wantCredit: "12.35"},
		{name: "zero is credit", txn: testutil.DebitTxn(t, "3", "2023-01-01", "Fee reversal", "0"), wantCredit: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Record(tt.txn)
			require.Len(t, row, len(Header()))
			assert.Equal(t, tt.wantDebit, row[2])
			assert.Equal(t, tt.wantCredit, row[3])
			assert.True(t, (row[2] == "") != (row[3] == ""), "exactly one amount column is filled")
			assert.Empty(t, row[4])
		})
	}
}

func TestEncodeReadsBack(t *testing.T) {
	txns := testutil.Sequence(t, 3, "Coffee Shop")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, txns))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header(), rows[0])
	assert.Equal(t, "Coffee Shop 100002", rows[3][1])
}
