package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// DriftReportRepository implements secondary.DriftReportRepository with SQLite.
type DriftReportRepository struct {
	db *sql.DB
}

// NewDriftReportRepository creates a new SQLite drift report repository.
func NewDriftReportRepository(db *sql.DB) *DriftReportRepository {
	return &DriftReportRepository{db: db}
}

// Replace supersedes any prior report for the definition in one transaction:
// old report row and explanation edges go, new ones come, atomically.
func (r *DriftReportRepository) Replace(ctx context.Context, report *secondary.DriftReportRecord, explains []*secondary.EdgeRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin report replacement: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM edges WHERE kind = ? AND from_id = ?",
		string(graph.EdgeExplains), report.ID,
	); err != nil {
		return fmt.Errorf("failed to clear explanation edges: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM drift_reports WHERE definition_path = ?",
		report.DefinitionPath,
	); err != nil {
		return fmt.Errorf("failed to clear prior report: %w", err)
	}

	var canonical sql.NullString
	if report.CanonicalHash != "" {
		canonical = sql.NullString{String: report.CanonicalHash, Valid: true}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO drift_reports (id, definition_path, canonical_hash, canonical_source, generated_at, payload) VALUES (?, ?, ?, ?, ?, ?)",
		report.ID, report.DefinitionPath, canonical, report.CanonicalSource, report.GeneratedAt, report.Payload,
	); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	for _, edge := range explains {
		if err := insertEdge(ctx, tx, edge); err != nil {
			return fmt.Errorf("failed to insert explanation edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report replacement: %w", err)
	}

	return nil
}

// GetByDefinition retrieves the current report for a definition.
func (r *DriftReportRepository) GetByDefinition(ctx context.Context, definitionPath string) (*secondary.DriftReportRecord, error) {
	var canonical sql.NullString
	record := &secondary.DriftReportRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, definition_path, canonical_hash, canonical_source, generated_at, payload FROM drift_reports WHERE definition_path = ?",
		definitionPath,
	).Scan(&record.ID, &record.DefinitionPath, &canonical, &record.CanonicalSource, &record.GeneratedAt, &record.Payload)

	if err == sql.ErrNoRows {
		return nil, graph.NotFound(graph.KindDriftReport, definitionPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drift report: %w", err)
	}

	record.CanonicalHash = canonical.String
	return record, nil
}
