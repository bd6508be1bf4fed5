package db

// SchemaSQL is the complete schema for fresh dotgraph installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// it via GetSchemaSQL(): if repository code references a column that doesn't
// exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Config definitions (identity = logical path, e.g. 'shell/zshrc')
CREATE TABLE IF NOT EXISTS definitions (
	path TEXT PRIMARY KEY,
	canonical_hash TEXT,
	tags TEXT NOT NULL DEFAULT '[]',
	status TEXT NOT NULL CHECK(status IN ('active', 'retired')) DEFAULT 'active',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Machines (created on first snapshot, soft-retired, never deleted)
CREATE TABLE IF NOT EXISTS machines (
	id TEXT PRIMARY KEY,
	hostname TEXT,
	hardware_class TEXT,
	status TEXT NOT NULL CHECK(status IN ('active', 'retired')) DEFAULT 'active',
	last_seen_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Snapshots (immutable, append-only observation timeline)
-- observed_at is unix nanoseconds: snapshots for a (definition, machine)
-- pair are totally ordered and never share a timestamp.
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	definition_path TEXT NOT NULL,
	machine_id TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	revision_id TEXT,
	diff_ref TEXT,
	observed_at INTEGER NOT NULL,
	no_op INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (definition_path) REFERENCES definitions(path),
	FOREIGN KEY (machine_id) REFERENCES machines(id),
	UNIQUE(definition_path, machine_id, observed_at)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_pair
	ON snapshots(definition_path, machine_id, observed_at DESC);

-- Annotations (tagged variant: kind discriminator + kind-specific columns)
CREATE TABLE IF NOT EXISTS annotations (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK(kind IN ('rationale', 'troubleshooting', 'roadmap', 'benchmark')),
	body TEXT NOT NULL,
	source TEXT,
	status TEXT CHECK(status IN ('open', 'resolved')),
	primary_id TEXT NOT NULL,
	primary_kind TEXT NOT NULL,
	resolved_by_id TEXT,
	metric_value REAL,
	metric_unit TEXT,
	priority TEXT CHECK(priority IN ('LOW', 'MEDIUM', 'HIGH')),
	trial_days INTEGER,
	trial_criteria TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_annotations_primary ON annotations(primary_id);
CREATE INDEX IF NOT EXISTS idx_annotations_kind_status ON annotations(kind, status);

-- Typed edges (entities reference each other only through this arena;
-- no embedded ownership, so annotation cycles are representable)
CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	from_id TEXT NOT NULL,
	from_kind TEXT NOT NULL,
	to_id TEXT NOT NULL,
	to_kind TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(kind, from_id, to_id)
);

CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id, kind);
CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id, kind);

-- Drift reports (regenerable, replaced wholesale, one per definition).
-- Deliberately no wall-clock column: recomputation over an unchanged graph
-- must store a byte-identical row.
CREATE TABLE IF NOT EXISTS drift_reports (
	id TEXT PRIMARY KEY,
	definition_path TEXT NOT NULL UNIQUE,
	canonical_hash TEXT,
	canonical_source TEXT NOT NULL,
	generated_at INTEGER NOT NULL,
	payload TEXT NOT NULL,
	FOREIGN KEY (definition_path) REFERENCES definitions(path)
);

-- Best-effort text index for annotations (keyword fallback when no external
-- embedding backend is wired)
CREATE TABLE IF NOT EXISTS semantic_index (
	entity_id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh install and runs pending
// migrations otherwise.
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Fresh install - create the schema directly and mark all
		// migrations as applied so they never run.
		if _, err := db.Exec(SchemaSQL); err != nil {
			return err
		}
		if _, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`); err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL.
// Tests must use this instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
