package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the schema version after every migration ran.
const ExpectedSchemaVersion = 2

// Migration is one schema step, stored as PRAGMA user_version once applied.
type Migration struct {
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Runs and their ledger entries",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				transaction_count INTEGER NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS ledger_entries (
				run_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				transaction_id TEXT NOT NULL,
				date TEXT NOT NULL,
				description TEXT NOT NULL,
				debit TEXT NOT NULL DEFAULT '',
				credit TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (run_id, position),
				FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
			)`,
		},
	},
	{
		Version:     2,
		Description: "Index entries by category and date",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_ledger_entries_category ON ledger_entries(category)`,
			`CREATE INDEX IF NOT EXISTS idx_ledger_entries_date ON ledger_entries(date)`,
		},
	},
}

// SchemaVersion returns the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the stored schema version,
// each in its own transaction.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		slog.Debug("Applied migration", "version", m.Version, "description", m.Description)
	}

	if current, err = s.SchemaVersion(ctx); err != nil {
		return err
	}
	if current != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, current)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return tx.Commit()
}
