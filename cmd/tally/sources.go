package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/Veraticus/tally/internal/plaid"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/sheets"
	"github.com/Veraticus/tally/internal/simplefin"
	"github.com/Veraticus/tally/internal/storage"
)

// Ledger formats understood by the categorize and tokens commands.
const (
	formatCSV    = "csv"
	formatOFX    = "ofx"
	formatPlaid  = "plaid"
	formatSimple = "simplefin"
	formatSQLite = "sqlite"
	formatSheets = "sheets"
)

// detectInputFormat picks the reader for location unless override names one.
func detectInputFormat(location, override string) (string, error) {
	if override != "" {
		switch f := strings.ToLower(override); f {
		case formatCSV, formatOFX, formatPlaid, formatSimple, formatSQLite:
			return f, nil
		case "qfx":
			return formatOFX, nil
		default:
			return "", fmt.Errorf("%w: unknown input format %q", common.ErrInvalidConfig, override)
		}
	}

	for _, remote := range []string{formatPlaid, formatSimple} {
		if strings.EqualFold(location, remote) {
			return remote, nil
		}
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".csv":
		return formatCSV, nil
	case ".ofx", ".qfx":
		return formatOFX, nil
	case ".db", ".sqlite":
		return formatSQLite, nil
	default:
		return "", fmt.Errorf("%w: cannot detect input format of %q; use --input-format", common.ErrInvalidConfig, location)
	}
}

// detectOutputFormat picks the writer for location unless override names one.
func detectOutputFormat(location, override string) (string, error) {
	if override != "" {
		switch f := strings.ToLower(override); f {
		case formatCSV, formatSQLite, formatSheets:
			return f, nil
		default:
			return "", fmt.Errorf("%w: unknown output format %q", common.ErrInvalidConfig, override)
		}
	}

	if strings.EqualFold(location, formatSheets) {
		return formatSheets, nil
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".csv":
		return formatCSV, nil
	case ".db", ".sqlite":
		return formatSQLite, nil
	default:
		return "", fmt.Errorf("%w: cannot detect output format of %q; use --output-format", common.ErrInvalidConfig, location)
	}
}

// closer releases a source or sink opened for one command.
type closer func() error

func noopCloser() error { return nil }

func openReader(ctx context.Context, settings config.Settings, location, format string) (service.TransactionReader, closer, error) {
	logger := slog.Default()

	switch format {
	case formatCSV:
		return ledger.NewCSVReader(location, logger), noopCloser, nil
	case formatOFX:
		return ofx.NewReader(location, logger), noopCloser, nil
	case formatPlaid:
		reader, err := plaid.NewReader(plaidConfig(settings.Plaid, time.Now()))
		if err != nil {
			return nil, nil, err
		}
		return reader, noopCloser, nil
	case formatSimple:
		reader, err := simplefin.NewReader(ctx, simpleFINConfig(settings.SimpleFIN, time.Now()))
		if err != nil {
			return nil, nil, err
		}
		return reader, noopCloser, nil
	case formatSQLite:
		if ledger.IsGCS(location) {
			return nil, nil, fmt.Errorf("%w: SQLite ledgers must be local files", common.ErrInvalidConfig)
		}
		db, err := storage.OpenWriter(ctx, location)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown input format %q", common.ErrInvalidConfig, format)
	}
}

func openWriter(ctx context.Context, settings config.Settings, location, format string) (service.TransactionWriter, closer, error) {
	logger := slog.Default()

	switch format {
	case formatCSV:
		return ledger.NewCSVWriter(location, logger), noopCloser, nil
	case formatSQLite:
		if ledger.IsGCS(location) {
			return nil, nil, fmt.Errorf("%w: SQLite ledgers must be local files", common.ErrInvalidConfig)
		}
		db, err := storage.OpenWriter(ctx, location)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case formatSheets:
		writer, err := sheets.NewWriter(ctx, sheetsConfig(settings.Sheets), logger)
		if err != nil {
			return nil, nil, err
		}
		return writer, noopCloser, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown output format %q", common.ErrInvalidConfig, format)
	}
}

func plaidConfig(s config.PlaidSettings, now time.Time) plaid.Config {
	days := s.Days
	if days <= 0 {
		days = 30
	}
	return plaid.Config{
		ClientID:    s.ClientID,
		Secret:      s.Secret,
		Environment: s.Environment,
		AccessToken: s.AccessToken,
		StartDate:   now.AddDate(0, 0, -days),
		EndDate:     now,
	}
}

func simpleFINConfig(s config.SimpleFINSettings, now time.Time) simplefin.Config {
	days := s.Days
	if days <= 0 {
		days = 30
	}
	return simplefin.Config{
		AccessURL:  s.AccessURL,
		SetupToken: s.SetupToken,
		StateFile:  s.StateFile,
		StartDate:  now.AddDate(0, 0, -days),
		EndDate:    now,
	}
}

func sheetsConfig(s config.SheetsSettings) sheets.Config {
	cfg := sheets.DefaultConfig()
	cfg.ServiceAccountPath = s.ServiceAccountPath
	cfg.ClientID = s.ClientID
	cfg.ClientSecret = s.ClientSecret
	cfg.RefreshToken = s.RefreshToken
	cfg.SpreadsheetID = s.SpreadsheetID
	if s.SpreadsheetName != "" {
		cfg.SpreadsheetName = s.SpreadsheetName
	}
	if s.SheetName != "" {
		cfg.SheetName = s.SheetName
	}
	return cfg
}
