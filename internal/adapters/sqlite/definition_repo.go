// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// DefinitionRepository implements secondary.DefinitionRepository with SQLite.
type DefinitionRepository struct {
	db *sql.DB
}

// NewDefinitionRepository creates a new SQLite definition repository.
func NewDefinitionRepository(db *sql.DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

// Create persists a new definition.
func (r *DefinitionRepository) Create(ctx context.Context, def *secondary.DefinitionRecord) error {
	tags, err := json.Marshal(def.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	if def.Tags == nil {
		tags = []byte("[]")
	}

	status := "active"
	if def.Status != "" {
		status = def.Status
	}

	var canonical sql.NullString
	if def.CanonicalHash != "" {
		canonical = sql.NullString{String: def.CanonicalHash, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO definitions (path, canonical_hash, tags, status) VALUES (?, ?, ?, ?)",
		def.Path, canonical, string(tags), status,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &graph.ConflictError{Kind: graph.KindDefinition, ID: def.Path}
		}
		return fmt.Errorf("failed to create definition: %w", err)
	}

	return nil
}

// Get retrieves a definition by its logical path.
func (r *DefinitionRepository) Get(ctx context.Context, path string) (*secondary.DefinitionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT path, canonical_hash, tags, status, created_at, updated_at FROM definitions WHERE path = ?",
		path,
	)
	record, err := scanDefinition(row)
	if err == sql.ErrNoRows {
		return nil, graph.NotFound(graph.KindDefinition, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get definition: %w", err)
	}
	return record, nil
}

// List retrieves definitions matching the given filters.
func (r *DefinitionRepository) List(ctx context.Context, filters secondary.DefinitionFilters) ([]*secondary.DefinitionRecord, error) {
	query := "SELECT path, canonical_hash, tags, status, created_at, updated_at FROM definitions WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY path"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}
	defer rows.Close()

	var defs []*secondary.DefinitionRecord
	for rows.Next() {
		record, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		// Tag filtering happens here; tags are a JSON array column.
		if filters.Tag != "" && !hasTag(record.Tags, filters.Tag) {
			continue
		}
		defs = append(defs, record)
	}

	return defs, rows.Err()
}

// AdoptCanonical sets the canonical content hash for a definition.
func (r *DefinitionRepository) AdoptCanonical(ctx context.Context, path, contentHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE definitions SET canonical_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE path = ?",
		contentHash, path,
	)
	if err != nil {
		return fmt.Errorf("failed to adopt canonical: %w", err)
	}
	return requireRow(res, graph.KindDefinition, path)
}

// Retire soft-retires a definition.
func (r *DefinitionRepository) Retire(ctx context.Context, path string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE definitions SET status = 'retired', updated_at = CURRENT_TIMESTAMP WHERE path = ?",
		path,
	)
	if err != nil {
		return fmt.Errorf("failed to retire definition: %w", err)
	}
	return requireRow(res, graph.KindDefinition, path)
}

// Exists checks whether a definition exists.
func (r *DefinitionRepository) Exists(ctx context.Context, path string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM definitions WHERE path = ?", path).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check definition: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (*secondary.DefinitionRecord, error) {
	var (
		canonical sql.NullString
		tagsJSON  string
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.DefinitionRecord{}
	err := row.Scan(&record.Path, &canonical, &tagsJSON, &record.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.CanonicalHash = canonical.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	if err := json.Unmarshal([]byte(tagsJSON), &record.Tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags: %w", err)
	}

	return record, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// requireRow converts a zero-row update into a typed not-found error.
func requireRow(res sql.Result, kind graph.EntityKind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return graph.NotFound(kind, id)
	}
	return nil
}
