// Package testing provides test helpers for database-backed packages.
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/investsync/internal/database"
)

// NewTestDB creates a temp-file SQLite database and applies the embedded
// schema registered for name, if any. The database is closed and removed
// when the test finishes.
//
// Supported schema names:
//   - "journal" - applies journal_schema.sql
//   - Any other name - creates an empty database
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db := open(t, name)
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}

// NewTestDBWithSchema creates a temp-file SQLite database and executes
// schema on it.
func NewTestDBWithSchema(t *testing.T, name string, schema string) *database.DB {
	t.Helper()

	db := open(t, name)
	if schema != "" {
		if _, err := db.Conn().Exec(schema); err != nil {
			t.Fatalf("Failed to execute custom schema for test database %s: %v", name, err)
		}
	}
	return db
}

func open(t *testing.T, name string) *database.DB {
	t.Helper()

	// t.TempDir keeps each test isolated and removes the WAL files too.
	path := filepath.Join(t.TempDir(), "test_"+name+".db")
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})
	return db
}

// TempPath returns a path inside a per-test directory that does not exist yet.
func TempPath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("temp path %s already exists", path)
	}
	return path
}
