// Package simplefin reads bank transactions from a SimpleFIN bridge.
package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/shopspring/decimal"
)

const dateFormat = "2006-01-02"

// Config holds SimpleFIN access settings. Either AccessURL or SetupToken is
// required; a claimed token is remembered in StateFile.
type Config struct {
	StartDate  time.Time
	EndDate    time.Time
	AccessURL  string
	SetupToken string
	StateFile  string
}

// Validate ensures the reader can authenticate and has a date range.
func (c *Config) Validate() error {
	if c.AccessURL == "" && c.SetupToken == "" {
		return fmt.Errorf("%w: simplefin access URL or setup token is required", common.ErrMissingConfig)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", common.ErrInvalidConfig)
	}
	return nil
}

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// Reader fetches posted transactions for every account behind an access URL.
type Reader struct {
	httpClient *http.Client
	logger     *slog.Logger
	start      time.Time
	end        time.Time
	accessURL  string
	retryOpts  service.RetryOptions
}

// NewReader resolves the access URL, claiming the setup token if needed.
func NewReader(ctx context.Context, cfg Config) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 30 * time.Second}

	accessURL := cfg.AccessURL
	if accessURL == "" {
		stateFile := cfg.StateFile
		if stateFile == "" {
			stateFile = DefaultStateFile()
		}
		auth, err := LoadOrClaimAuth(ctx, client, cfg.SetupToken, stateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load/claim auth: %w", err)
		}
		accessURL = auth.AccessURL
	}

	return &Reader{
		httpClient: client,
		accessURL:  accessURL,
		start:      cfg.StartDate,
		end:        cfg.EndDate,
		logger:     slog.Default().With("component", "simplefin"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// ReadTransactions fetches posted transactions in the configured range.
// Pending transactions are skipped.
func (r *Reader) ReadTransactions(ctx context.Context) ([]model.Transaction, error) {
	r.logger.Info("Fetching transactions from SimpleFIN",
		"start_date", r.start.Format(dateFormat),
		"end_date", r.end.Format(dateFormat))

	var set accountSet
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		set, fetchErr = r.fetchAccounts(ctx)
		return fetchErr
	}, r.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	for _, msg := range set.Errors {
		r.logger.Warn("SimpleFIN reported a problem", "message", msg)
	}

	var transactions []model.Transaction
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}

			date := time.Unix(tx.Posted, 0).UTC()
			if date.Before(r.start) || date.After(r.end) {
				continue
			}

			txn, err := mapTransaction(acct.ID, tx, date)
			if err != nil {
				r.logger.Warn("Skipping malformed transaction", "account", acct.ID, "id", tx.ID, "error", err)
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	r.logger.Info("Fetched all transactions", "accounts", len(set.Accounts), "count", len(transactions))
	return transactions, nil
}

func (r *Reader) fetchAccounts(ctx context.Context) (accountSet, error) {
	u, err := url.Parse(r.accessURL + "/accounts")
	if err != nil {
		return accountSet{}, fmt.Errorf("failed to parse access URL: %w", err)
	}

	q := u.Query()
	q.Set("start-date", strconv.FormatInt(r.start.Unix(), 10))
	// end-date is exclusive.
	q.Set("end-date", strconv.FormatInt(r.end.AddDate(0, 0, 1).Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return accountSet{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return accountSet{}, common.Retryable(fmt.Errorf("failed to fetch data: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, string(body))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return accountSet{}, common.Retryable(fmt.Errorf("%w: %w", common.ErrRateLimit, apiErr))
		case resp.StatusCode >= http.StatusInternalServerError:
			return accountSet{}, common.Retryable(apiErr)
		default:
			return accountSet{}, apiErr
		}
	}

	var set accountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return accountSet{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return set, nil
}

// mapTransaction converts a SimpleFIN transaction. SimpleFIN amounts are
// signed decimal strings with money out negative.
func mapTransaction(accountID string, tx transaction, date time.Time) (model.Transaction, error) {
	value, err := decimal.NewFromString(tx.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", tx.Amount, err)
	}

	text := tx.Description
	if text == "" {
		text = tx.Payee
	}
	description, err := model.NewDescription(text)
	if err != nil {
		return model.Transaction{}, err
	}

	amount := model.Credit(value)
	if value.IsNegative() {
		amount = model.Debit(value)
	}

	return model.NewTransaction(accountID+"_"+tx.ID, date, description, amount), nil
}
