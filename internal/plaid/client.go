// Package plaid reads bank transactions from the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

const (
	dateFormat = "2006-01-02"
	// Plaid's max page size.
	pageSize = int32(500)
)

// Config holds Plaid API configuration.
type Config struct {
	StartDate   time.Time
	EndDate     time.Time
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	if c.Environment == "" {
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	}

	switch c.Environment {
	case "sandbox", "production":
	default:
		return fmt.Errorf("%w: invalid Plaid environment: must be sandbox or production", common.ErrInvalidConfig)
	}

	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: plaid start and end dates are required", common.ErrMissingConfig)
	}
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("%w: start date must be before end date", common.ErrInvalidConfig)
	}

	return nil
}

// page is one /transactions/get response.
type page struct {
	transactions []plaid.Transaction
	total        int
}

type pageFetcher func(ctx context.Context, offset int32) (page, error)

// Reader fetches the transactions of one Item over a date range.
type Reader struct {
	fetch     pageFetcher
	logger    *slog.Logger
	start     time.Time
	end       time.Time
	retryOpts service.RetryOptions
}

// NewReader creates a reader backed by the Plaid API.
func NewReader(cfg Config) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	client := plaid.NewAPIClient(configuration)
	start, end := cfg.StartDate.Format(dateFormat), cfg.EndDate.Format(dateFormat)

	fetch := func(ctx context.Context, offset int32) (page, error) {
		request := plaid.NewTransactionsGetRequest(cfg.AccessToken, start, end)
		request.SetOptions(plaid.TransactionsGetRequestOptions{
			Count:  plaid.PtrInt32(pageSize),
			Offset: plaid.PtrInt32(offset),
		})

		resp, _, err := client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
		if err != nil {
			return page{}, classifyError(err)
		}
		return page{transactions: resp.GetTransactions(), total: int(resp.GetTotalTransactions())}, nil
	}

	return newReader(cfg, fetch), nil
}

func newReader(cfg Config, fetch pageFetcher) *Reader {
	return &Reader{
		fetch:  fetch,
		start:  cfg.StartDate,
		end:    cfg.EndDate,
		logger: slog.Default().With("component", "plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// ReadTransactions fetches every page in the configured range.
func (r *Reader) ReadTransactions(ctx context.Context) ([]model.Transaction, error) {
	r.logger.Info("Fetching transactions from Plaid",
		"start_date", r.start.Format(dateFormat),
		"end_date", r.end.Format(dateFormat))

	var all []plaid.Transaction
	offset := int32(0)

	for {
		var current page
		err := common.WithRetry(ctx, func() error {
			var fetchErr error
			current, fetchErr = r.fetch(ctx, offset)
			return fetchErr
		}, r.retryOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch transactions: %w", err)
		}

		all = append(all, current.transactions...)

		r.logger.Debug("Fetched transaction batch",
			"count", len(current.transactions),
			"offset", offset,
			"total", current.total)

		if len(current.transactions) == 0 || len(all) >= current.total {
			break
		}
		offset += int32(len(current.transactions))
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, pt := range all {
		txn, err := mapTransaction(pt)
		if err != nil {
			r.logger.Warn("Skipping malformed transaction", "id", pt.GetTransactionId(), "error", err)
			continue
		}
		transactions = append(transactions, txn)
	}

	r.logger.Info("Fetched all transactions", "count", len(transactions))
	return transactions, nil
}

// mapTransaction converts a Plaid transaction. Plaid reports money out as
// a positive amount.
func mapTransaction(pt plaid.Transaction) (model.Transaction, error) {
	date, err := time.Parse(dateFormat, pt.GetDate())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", pt.GetDate(), err)
	}

	name := pt.GetName()
	if name == "" {
		name = pt.GetMerchantName()
	}
	description, err := model.NewDescription(name)
	if err != nil {
		return model.Transaction{}, err
	}

	value := decimal.NewFromFloat(pt.GetAmount())
	amount := model.Credit(value)
	if value.IsPositive() {
		amount = model.Debit(value)
	}

	return model.NewTransaction(pt.GetTransactionId(), date, description, amount), nil
}

// classifyError marks Plaid rate limits as retryable and flattens API
// errors into readable messages.
func classifyError(err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("plaid request failed: %w", err)
	}

	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s", common.ErrRateLimit, plaidErr.ErrorMessage),
			Retryable: true,
		}
	}
	return fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
}
