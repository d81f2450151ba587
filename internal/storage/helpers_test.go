package storage_test

import (
	"context"
	"testing"

	"github.com/Veraticus/tally/internal/storage"
)

// setupTestDB creates a migrated in-memory database that is closed when the
// test ends.
func setupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.OpenWriter(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return db
}
