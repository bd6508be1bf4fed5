package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// SnapshotRepository implements secondary.SnapshotRepository with SQLite.
// Snapshots are append-only: the repository exposes no update or delete.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SQLite snapshot repository.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = "id, definition_path, machine_id, content_hash, revision_id, diff_ref, observed_at, no_op, created_at"

// Create persists a new snapshot, its linkage edges and the machine
// last-seen update in one transaction. An observation is either fully in
// the graph or not at all.
func (r *SnapshotRepository) Create(ctx context.Context, snap *secondary.SnapshotRecord, edges []*secondary.EdgeRecord, machineLastSeen string) error {
	var revision, diffRef sql.NullString
	if snap.RevisionID != "" {
		revision = sql.NullString{String: snap.RevisionID, Valid: true}
	}
	if snap.DiffRef != "" {
		diffRef = sql.NullString{String: snap.DiffRef, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshots (id, definition_path, machine_id, content_hash, revision_id, diff_ref, observed_at, no_op) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		snap.ID, snap.DefinitionPath, snap.MachineID, snap.ContentHash, revision, diffRef, snap.ObservedAt, snap.NoOp,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &graph.ConflictError{
				Kind:   graph.KindSnapshot,
				ID:     snap.ID,
				Detail: fmt.Sprintf("duplicate observed-at for (%s, %s)", snap.DefinitionPath, snap.MachineID),
			}
		}
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	for _, edge := range edges {
		if err := insertEdge(ctx, tx, edge); err != nil {
			return fmt.Errorf("failed to link snapshot: %w", err)
		}
	}

	if machineLastSeen != "" {
		if _, err := tx.ExecContext(ctx,
			"UPDATE machines SET last_seen_at = ? WHERE id = ?",
			machineLastSeen, snap.MachineID,
		); err != nil {
			return fmt.Errorf("failed to update machine last-seen: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot write: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by its id.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*secondary.SnapshotRecord, error) {
	record, err := scanSnapshot(r.db.QueryRowContext(ctx,
		"SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, graph.NotFound(graph.KindSnapshot, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return record, nil
}

// Latest returns the newest snapshot for a (definition, machine) pair, or
// nil when the machine has never reported on the definition.
func (r *SnapshotRepository) Latest(ctx context.Context, definitionPath, machineID string) (*secondary.SnapshotRecord, error) {
	record, err := scanSnapshot(r.db.QueryRowContext(ctx,
		"SELECT "+snapshotColumns+" FROM snapshots WHERE definition_path = ? AND machine_id = ? ORDER BY observed_at DESC LIMIT 1",
		definitionPath, machineID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return record, nil
}

// LatestPerMachine returns each reporting machine's newest snapshot observed
// at or before asOf.
func (r *SnapshotRepository) LatestPerMachine(ctx context.Context, definitionPath string, asOf int64) ([]*secondary.SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.definition_path, s.machine_id, s.content_hash, s.revision_id, s.diff_ref, s.observed_at, s.no_op, s.created_at
		FROM snapshots s
		JOIN (
			SELECT machine_id, MAX(observed_at) AS observed_at
			FROM snapshots
			WHERE definition_path = ? AND observed_at <= ?
			GROUP BY machine_id
		) latest ON s.machine_id = latest.machine_id AND s.observed_at = latest.observed_at
		WHERE s.definition_path = ?
		ORDER BY s.machine_id`,
		definitionPath, asOf, definitionPath,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshots: %w", err)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// History returns all snapshots for a (definition, machine) pair, oldest first.
func (r *SnapshotRepository) History(ctx context.Context, definitionPath, machineID string) ([]*secondary.SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+snapshotColumns+" FROM snapshots WHERE definition_path = ? AND machine_id = ? ORDER BY observed_at",
		definitionPath, machineID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

func collectSnapshots(rows *sql.Rows) ([]*secondary.SnapshotRecord, error) {
	var snaps []*secondary.SnapshotRecord
	for rows.Next() {
		record, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, record)
	}
	return snaps, rows.Err()
}

func scanSnapshot(row rowScanner) (*secondary.SnapshotRecord, error) {
	var (
		revision  sql.NullString
		diffRef   sql.NullString
		createdAt time.Time
	)

	record := &secondary.SnapshotRecord{}
	err := row.Scan(&record.ID, &record.DefinitionPath, &record.MachineID, &record.ContentHash,
		&revision, &diffRef, &record.ObservedAt, &record.NoOp, &createdAt)
	if err != nil {
		return nil, err
	}

	record.RevisionID = revision.String
	record.DiffRef = diffRef.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}
