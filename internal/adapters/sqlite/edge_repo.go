package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// EdgeRepository implements secondary.EdgeRepository with SQLite.
type EdgeRepository struct {
	db *sql.DB
}

// NewEdgeRepository creates a new SQLite edge repository.
func NewEdgeRepository(db *sql.DB) *EdgeRepository {
	return &EdgeRepository{db: db}
}

// Create persists a new edge. An empty ID gets a generated one. Re-creating
// an identical (kind, from, to) triple is idempotent, not a conflict: edges
// carry no payload, so the duplicate write changes nothing.
func (r *EdgeRepository) Create(ctx context.Context, edge *secondary.EdgeRecord) error {
	id := edge.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO edges (id, kind, from_id, from_kind, to_id, to_kind) VALUES (?, ?, ?, ?, ?, ?)",
		id, edge.Kind, edge.FromID, edge.FromKind, edge.ToID, edge.ToKind,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil
		}
		return fmt.Errorf("failed to create edge: %w", err)
	}

	edge.ID = id
	return nil
}

// insertEdge writes an edge inside an existing transaction. An empty ID gets
// a generated one; re-creating an identical (kind, from, to) triple is a
// silent no-op, matching Create.
func insertEdge(ctx context.Context, tx *sql.Tx, edge *secondary.EdgeRecord) error {
	id := edge.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO edges (id, kind, from_id, from_kind, to_id, to_kind) VALUES (?, ?, ?, ?, ?, ?)",
		id, edge.Kind, edge.FromID, edge.FromKind, edge.ToID, edge.ToKind,
	)
	return err
}

// Query retrieves edges matching the pattern; zero-valued fields match anything.
func (r *EdgeRepository) Query(ctx context.Context, pattern secondary.EdgePattern) ([]*secondary.EdgeRecord, error) {
	query := "SELECT id, kind, from_id, from_kind, to_id, to_kind, created_at FROM edges WHERE 1=1"
	args := []any{}

	if pattern.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(pattern.Kind))
	}
	if pattern.FromID != "" {
		query += " AND from_id = ?"
		args = append(args, pattern.FromID)
	}
	if pattern.ToID != "" {
		query += " AND to_id = ?"
		args = append(args, pattern.ToID)
	}

	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []*secondary.EdgeRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.EdgeRecord{}
		if err := rows.Scan(&record.ID, &record.Kind, &record.FromID, &record.FromKind, &record.ToID, &record.ToKind, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		edges = append(edges, record)
	}

	return edges, rows.Err()
}

// DeleteByFrom removes all edges of a kind originating at an entity.
func (r *EdgeRepository) DeleteByFrom(ctx context.Context, kind graph.EdgeKind, fromID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM edges WHERE kind = ? AND from_id = ?",
		string(kind), fromID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete edges: %w", err)
	}
	return nil
}
