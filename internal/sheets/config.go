// Package sheets writes categorized ledgers to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/common"
)

// Config selects the spreadsheet, tab and credentials the writer uses.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	SheetName          string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig writes to the "Transactions" tab of a new "Categorized Ledger"
// spreadsheet, 1000 rows per request.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Categorized Ledger",
		SheetName:        "Transactions",
		EnableFormatting: true,
		TimeZone:         "America/Toronto",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// authMethod is how the writer obtains Google credentials.
type authMethod int

const (
	authNone authMethod = iota
	authRefreshToken
	authServiceAccount
)

// auth picks the credential source. Exactly one must be fully configured.
func (c *Config) auth() (authMethod, error) {
	refresh := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	serviceAccount := c.ServiceAccountPath != ""

	switch {
	case refresh && serviceAccount:
		return authNone, fmt.Errorf("%w: multiple authentication methods configured; use either a refresh token or a service account", common.ErrInvalidConfig)
	case refresh:
		return authRefreshToken, nil
	case serviceAccount:
		return authServiceAccount, nil
	default:
		return authNone, fmt.Errorf("%w: no Google Sheets authentication method configured", common.ErrMissingConfig)
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if _, err := c.auth(); err != nil {
		return err
	}

	switch {
	case c.SheetName == "":
		return fmt.Errorf("%w: sheet name is required", common.ErrMissingConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
