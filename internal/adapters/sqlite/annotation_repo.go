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

// AnnotationRepository implements secondary.AnnotationRepository with SQLite.
type AnnotationRepository struct {
	db *sql.DB
}

// NewAnnotationRepository creates a new SQLite annotation repository.
func NewAnnotationRepository(db *sql.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

const annotationColumns = "id, kind, body, source, status, primary_id, primary_kind, resolved_by_id, metric_value, metric_unit, priority, trial_days, trial_criteria, created_at, updated_at, resolved_at"

// Create persists a new annotation and its structural edges in one
// transaction. Callers are never told the write failed while a discoverable
// annotation sits in the store.
func (r *AnnotationRepository) Create(ctx context.Context, ann *secondary.AnnotationRecord, edges []*secondary.EdgeRecord) error {
	var source, status, resolvedBy, metricUnit, priority, trialCriteria sql.NullString
	var metricValue sql.NullFloat64
	var trialDays sql.NullInt64

	if ann.Source != "" {
		source = sql.NullString{String: ann.Source, Valid: true}
	}
	if ann.Status != "" {
		status = sql.NullString{String: ann.Status, Valid: true}
	}
	if ann.ResolvedByID != "" {
		resolvedBy = sql.NullString{String: ann.ResolvedByID, Valid: true}
	}
	if ann.HasMetric {
		metricValue = sql.NullFloat64{Float64: ann.MetricValue, Valid: true}
		metricUnit = sql.NullString{String: ann.MetricUnit, Valid: true}
	}
	if ann.Priority != "" {
		priority = sql.NullString{String: ann.Priority, Valid: true}
	}
	if ann.TrialDays > 0 {
		trialDays = sql.NullInt64{Int64: int64(ann.TrialDays), Valid: true}
	}
	if ann.TrialCriteria != "" {
		trialCriteria = sql.NullString{String: ann.TrialCriteria, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin annotation write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO annotations (id, kind, body, source, status, primary_id, primary_kind, resolved_by_id, metric_value, metric_unit, priority, trial_days, trial_criteria) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		ann.ID, ann.Kind, ann.Body, source, status, ann.PrimaryID, ann.PrimaryKind, resolvedBy, metricValue, metricUnit, priority, trialDays, trialCriteria,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &graph.ConflictError{Kind: graph.KindAnnotation, ID: ann.ID}
		}
		return fmt.Errorf("failed to create annotation: %w", err)
	}

	for _, edge := range edges {
		if err := insertEdge(ctx, tx, edge); err != nil {
			return fmt.Errorf("failed to link annotation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit annotation write: %w", err)
	}

	return nil
}

// Get retrieves an annotation by its id.
func (r *AnnotationRepository) Get(ctx context.Context, id string) (*secondary.AnnotationRecord, error) {
	record, err := scanAnnotation(r.db.QueryRowContext(ctx,
		"SELECT "+annotationColumns+" FROM annotations WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, graph.NotFound(graph.KindAnnotation, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get annotation: %w", err)
	}
	return record, nil
}

// List retrieves annotations matching the given filters, newest first.
func (r *AnnotationRepository) List(ctx context.Context, filters secondary.AnnotationFilters) ([]*secondary.AnnotationRecord, error) {
	query := "SELECT " + annotationColumns + " FROM annotations WHERE 1=1"
	args := []any{}

	if len(filters.Kinds) > 0 {
		query += " AND kind IN (?" + strings.Repeat(", ?", len(filters.Kinds)-1) + ")"
		for _, k := range filters.Kinds {
			args = append(args, k)
		}
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.PrimaryID != "" {
		query += " AND primary_id = ?"
		args = append(args, filters.PrimaryID)
	}
	if len(filters.TouchingIDs) > 0 {
		placeholders := "?" + strings.Repeat(", ?", len(filters.TouchingIDs)-1)
		query += " AND (primary_id IN (" + placeholders + ")" +
			" OR id IN (SELECT from_id FROM edges WHERE kind = 'references' AND to_id IN (" + placeholders + ")))"
		for i := 0; i < 2; i++ {
			for _, id := range filters.TouchingIDs {
				args = append(args, id)
			}
		}
	}
	if filters.SinceNanos > 0 {
		query += " AND created_at >= datetime(?, 'unixepoch')"
		args = append(args, filters.SinceNanos/int64(time.Second))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	defer rows.Close()

	var anns []*secondary.AnnotationRecord
	for rows.Next() {
		record, err := scanAnnotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		anns = append(anns, record)
	}

	return anns, rows.Err()
}

// MarkResolved transitions an annotation to resolved and stores the
// resolution edge in the same transaction.
func (r *AnnotationRepository) MarkResolved(ctx context.Context, id, resolvedByID string, edge *secondary.EdgeRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin resolution: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE annotations SET status = 'resolved', resolved_by_id = ?, resolved_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		resolvedByID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve annotation: %w", err)
	}
	if err := requireRow(res, graph.KindAnnotation, id); err != nil {
		return err
	}

	if edge != nil {
		if err := insertEdge(ctx, tx, edge); err != nil {
			return fmt.Errorf("failed to link resolution: %w", err)
		}
	}

	return tx.Commit()
}

// GetNextID returns the next available annotation ID.
func (r *AnnotationRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM annotations",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next annotation ID: %w", err)
	}

	return fmt.Sprintf("ANN-%03d", maxID+1), nil
}

func scanAnnotation(row rowScanner) (*secondary.AnnotationRecord, error) {
	var (
		source        sql.NullString
		status        sql.NullString
		resolvedBy    sql.NullString
		metricValue   sql.NullFloat64
		metricUnit    sql.NullString
		priority      sql.NullString
		trialDays     sql.NullInt64
		trialCriteria sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
		resolvedAt    sql.NullTime
	)

	record := &secondary.AnnotationRecord{}
	err := row.Scan(&record.ID, &record.Kind, &record.Body, &source, &status,
		&record.PrimaryID, &record.PrimaryKind, &resolvedBy,
		&metricValue, &metricUnit, &priority, &trialDays, &trialCriteria,
		&createdAt, &updatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	record.Source = source.String
	record.Status = status.String
	record.ResolvedByID = resolvedBy.String
	if metricValue.Valid {
		record.MetricValue = metricValue.Float64
		record.MetricUnit = metricUnit.String
		record.HasMetric = true
	}
	record.Priority = priority.String
	record.TrialDays = int(trialDays.Int64)
	record.TrialCriteria = trialCriteria.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	if resolvedAt.Valid {
		record.ResolvedAt = resolvedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}
