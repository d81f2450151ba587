// Package model defines the core domain models used throughout the application.
package model

import "time"

// Transaction is a single ledger row. It is treated as an immutable value:
// WithCategory returns a copy instead of modifying the receiver.
type Transaction struct {
	Date        time.Time
	Category    *Category // nil until categorized
	ID          string
	Description Description
	Amount      Amount
}

// NewTransaction creates an uncategorized transaction.
func NewTransaction(id string, date time.Time, description Description, amount Amount) Transaction {
	return Transaction{
		ID:          id,
		Date:        date,
		Description: description,
		Amount:      amount,
	}
}

// WithCategory returns a copy of t tagged with category.
func (t Transaction) WithCategory(category Category) Transaction {
	t.Category = &category
	return t
}

// IsCategorized reports whether a category has been attached.
func (t Transaction) IsCategorized() bool {
	return t.Category != nil
}

// CategoryName returns the category name or an empty string.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}
