package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_graph_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_roadmap_trial_tracking",
		Up:      migrationV2,
	},
}

// migrationV1 creates the initial graph schema.
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(SchemaSQL)
	return err
}

// migrationV2 adds trial-tracking columns to roadmap annotations for installs
// predating SchemaSQL carrying them.
func migrationV2(db *sql.DB) error {
	for _, stmt := range []string{
		"ALTER TABLE annotations ADD COLUMN trial_days INTEGER",
		"ALTER TABLE annotations ADD COLUMN trial_criteria TEXT",
	} {
		if _, err := db.Exec(stmt); err != nil {
			// Column already present on fresh installs.
			continue
		}
	}
	return nil
}

// RunMigrations applies pending migrations in order, each in its own
// transaction-equivalent step.
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	// Create schema_version table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
