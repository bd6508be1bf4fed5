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

// MachineRepository implements secondary.MachineRepository with SQLite.
type MachineRepository struct {
	db *sql.DB
}

// NewMachineRepository creates a new SQLite machine repository.
func NewMachineRepository(db *sql.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// Create persists a new machine.
func (r *MachineRepository) Create(ctx context.Context, machine *secondary.MachineRecord) error {
	var hostname, hardware sql.NullString
	if machine.Hostname != "" {
		hostname = sql.NullString{String: machine.Hostname, Valid: true}
	}
	if machine.HardwareClass != "" {
		hardware = sql.NullString{String: machine.HardwareClass, Valid: true}
	}

	status := "active"
	if machine.Status != "" {
		status = machine.Status
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO machines (id, hostname, hardware_class, status, last_seen_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
		machine.ID, hostname, hardware, status,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &graph.ConflictError{Kind: graph.KindMachine, ID: machine.ID}
		}
		return fmt.Errorf("failed to create machine: %w", err)
	}

	return nil
}

// Get retrieves a machine by its id.
func (r *MachineRepository) Get(ctx context.Context, id string) (*secondary.MachineRecord, error) {
	record, err := scanMachine(r.db.QueryRowContext(ctx,
		"SELECT id, hostname, hardware_class, status, last_seen_at, created_at FROM machines WHERE id = ?",
		id,
	))
	if err == sql.ErrNoRows {
		return nil, graph.NotFound(graph.KindMachine, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}
	return record, nil
}

// List retrieves machines matching the given filters.
func (r *MachineRepository) List(ctx context.Context, filters secondary.MachineFilters) ([]*secondary.MachineRecord, error) {
	query := "SELECT id, hostname, hardware_class, status, last_seen_at, created_at FROM machines WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	defer rows.Close()

	var machines []*secondary.MachineRecord
	for rows.Next() {
		record, err := scanMachine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		machines = append(machines, record)
	}

	return machines, rows.Err()
}

// Retire soft-retires a machine. The row stays so past drift reports keep
// their subject.
func (r *MachineRepository) Retire(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE machines SET status = 'retired' WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to retire machine: %w", err)
	}
	return requireRow(res, graph.KindMachine, id)
}

// Exists checks whether a machine exists.
func (r *MachineRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM machines WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check machine: %w", err)
	}
	return count > 0, nil
}

func scanMachine(row rowScanner) (*secondary.MachineRecord, error) {
	var (
		hostname  sql.NullString
		hardware  sql.NullString
		lastSeen  sql.NullTime
		createdAt time.Time
	)

	record := &secondary.MachineRecord{}
	err := row.Scan(&record.ID, &hostname, &hardware, &record.Status, &lastSeen, &createdAt)
	if err != nil {
		return nil, err
	}

	record.Hostname = hostname.String
	record.HardwareClass = hardware.String
	if lastSeen.Valid {
		record.LastSeenAt = lastSeen.Time.Format(time.RFC3339)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}
