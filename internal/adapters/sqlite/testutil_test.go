// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements here.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/dotgraph/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedDefinition inserts a test definition and returns its path.
func seedDefinition(t *testing.T, db *sql.DB, path string) string {
	t.Helper()
	if path == "" {
		path = "shell/zshrc"
	}
	_, err := db.Exec("INSERT INTO definitions (path, status) VALUES (?, 'active')", path)
	if err != nil {
		t.Fatalf("failed to seed definition: %v", err)
	}
	return path
}

// seedMachine inserts a test machine and returns its id.
func seedMachine(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "M1"
	}
	_, err := db.Exec("INSERT INTO machines (id, hostname, status) VALUES (?, ?, 'active')", id, id+".local")
	if err != nil {
		t.Fatalf("failed to seed machine: %v", err)
	}
	return id
}

// seedSnapshot inserts a test snapshot.
func seedSnapshot(t *testing.T, db *sql.DB, id, defPath, machineID, hash string, observedAt int64) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO snapshots (id, definition_path, machine_id, content_hash, observed_at) VALUES (?, ?, ?, ?, ?)",
		id, defPath, machineID, hash, observedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}
}
