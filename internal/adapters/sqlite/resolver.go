package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/dotgraph/internal/core/graph"
)

// EntityResolver implements secondary.EntityResolver with SQLite.
// Annotation targets are polymorphic, so the annotator needs to learn what
// kind of entity an id names before it can link to it.
type EntityResolver struct {
	db *sql.DB
}

// NewEntityResolver creates a new SQLite entity resolver.
func NewEntityResolver(db *sql.DB) *EntityResolver {
	return &EntityResolver{db: db}
}

// kindTables maps entity kinds to (table, id column), probed in order.
var kindTables = []struct {
	kind   graph.EntityKind
	table  string
	column string
}{
	{graph.KindDefinition, "definitions", "path"},
	{graph.KindMachine, "machines", "id"},
	{graph.KindSnapshot, "snapshots", "id"},
	{graph.KindAnnotation, "annotations", "id"},
	{graph.KindDriftReport, "drift_reports", "id"},
}

// ResolveKind returns the kind of the entity with the given id.
func (r *EntityResolver) ResolveKind(ctx context.Context, id string) (graph.EntityKind, bool, error) {
	for _, kt := range kindTables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", kt.table, kt.column)
		if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
			return "", false, fmt.Errorf("failed to resolve entity kind: %w", err)
		}
		if count > 0 {
			return kt.kind, true, nil
		}
	}
	return "", false, nil
}
