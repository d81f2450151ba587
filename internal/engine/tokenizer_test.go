package engine

import (
	"testing"

	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name        string
		description string
		credit      bool
		want        []string
	}{
		{
			name:        "basic tokens",
			description: "Coffee Shop Downtown",
			want:        []string{"debit", "coffee", "shop", "downtown"},
		},
		{
			name:        "drops reference numbers",
			description: "Internet Banking E-TRANSFER 105483383773 Amy Farrish",
			want:        []string{"debit", "internet", "banking", "e-transfer", "amy", "farrish"},
		},
		{
			name:        "keeps common words",
			description: "Internet Banking Electronic Funds Transfer PAY John Doe",
			want:        []string{"debit", "internet", "banking", "electronic", "funds", "transfer", "pay", "john", "doe"},
		},
		{
			name:        "drops email addresses",
			description: "Payment to john.doe@example.com for services",
			want:        []string{"debit", "payment", "to", "for", "services"},
		},
		{
			name:        "keeps short tokens",
			description: "Buy at a B shop XY",
			want:        []string{"debit", "buy", "at", "a", "b", "shop", "xy"},
		},
		{
			name:        "keeps punctuation tokens",
			description: "Point of Sale - Interac RETAIL PURCHASE 516419480876 COFFEE SHOP",
			want:        []string{"debit", "point", "of", "sale", "-", "interac", "retail", "purchase", "coffee", "shop"},
		},
		{
			name:        "cheque numbers",
			description: "CHEQUE 001 82657362",
			want:        []string{"debit", "cheque"},
		},
		{
			name:        "only numbers",
			description: "123 456 78 90",
			want:        []string{"debit"},
		},
		{
			name:        "mixed case and whitespace",
			description: "  Coffee   Shop    DOWNTOWN   ",
			want:        []string{"debit", "coffee", "shop", "downtown"},
		},
		{
			name:        "alphanumeric tokens are dropped",
			description: "Electronic Funds Transfer PAY SALARY-123 Company Name",
			credit:      true,
			want:        []string{"credit", "electronic", "funds", "transfer", "pay", "company", "name"},
		},
		{
			name:        "credit marker",
			description: "SALARY DEPOSIT",
			credit:      true,
			want:        []string{"credit", "salary", "deposit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := testutil.DebitTxn(t, "1", "2023-01-15", tt.description, "5.50")
			if tt.credit {
				txn = testutil.CreditTxn(t, "1", "2023-01-15", tt.description, "2500.00")
			}

			assert.Equal(t, tt.want, Tokens(txn))
		})
	}
}

func TestTokensZeroAmountIsCredit(t *testing.T) {
	txn := testutil.DebitTxn(t, "1", "2023-01-15", "Fee reversal", "0")
	assert.Equal(t, []string{"credit", "fee", "reversal"}, Tokens(txn))
}

func TestSignature(t *testing.T) {
	t.Run("e-transfers with different references match", func(t *testing.T) {
		a := testutil.DebitTxn(t, "1", "2023-01-15", "Internet Banking E-TRANSFER 105483383773 Amy Farrish", "277.50")
		b := testutil.DebitTxn(t, "2", "2023-01-16", "Internet Banking E-TRANSFER 105440322530 Amy Farrish", "240.00")

		assert.Equal(t, Tokens(a), Tokens(b))
		assert.Equal(t, Signature(Tokens(a)), Signature(Tokens(b)))
	})

	t.Run("order does not matter", func(t *testing.T) {
		assert.Equal(t,
			Signature([]string{"debit", "shop", "coffee"}),
			Signature([]string{"debit", "coffee", "shop"}))
	})

	t.Run("direction matters", func(t *testing.T) {
		a := testutil.DebitTxn(t, "1", "2023-01-15", "Refund Store", "10")
		b := testutil.CreditTxn(t, "2", "2023-01-15", "Refund Store", "10")
		assert.NotEqual(t, Signature(Tokens(a)), Signature(Tokens(b)))
	})

	t.Run("does not reorder its input", func(t *testing.T) {
		tokens := []string{"debit", "zeta", "alpha"}
		_ = Signature(tokens)
		assert.Equal(t, []string{"debit", "zeta", "alpha"}, tokens)
	})
}
