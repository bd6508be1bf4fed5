// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import (
	"context"

	"github.com/example/dotgraph/internal/core/graph"
)

// DefinitionRepository defines the secondary port for config definition persistence.
// A definition's identity is its logical path (e.g. "shell/zshrc").
type DefinitionRepository interface {
	// Create persists a new definition. Fails with ConflictError on a
	// duplicate path.
	Create(ctx context.Context, def *DefinitionRecord) error

	// Get retrieves a definition by its logical path.
	Get(ctx context.Context, path string) (*DefinitionRecord, error)

	// List retrieves definitions matching the given filters.
	List(ctx context.Context, filters DefinitionFilters) ([]*DefinitionRecord, error)

	// AdoptCanonical sets the canonical content hash for a definition.
	AdoptCanonical(ctx context.Context, path, contentHash string) error

	// Retire soft-retires a definition.
	Retire(ctx context.Context, path string) error

	// Exists checks whether a definition exists (for validation).
	Exists(ctx context.Context, path string) (bool, error)
}

// DefinitionRecord represents a config definition as stored in persistence.
type DefinitionRecord struct {
	Path          string // logical path, primary identity
	CanonicalHash string // empty until adopted
	Tags          []string
	Status        string // "active" or "retired"
	CreatedAt     string
	UpdatedAt     string
}

// DefinitionFilters contains filter options for querying definitions.
type DefinitionFilters struct {
	Status string
	Tag    string
}

// MachineRepository defines the secondary port for machine persistence.
// Machines are never deleted, only soft-retired, so historical drift reports
// stay explainable.
type MachineRepository interface {
	// Create persists a new machine. Fails with ConflictError on a
	// duplicate machine id.
	Create(ctx context.Context, machine *MachineRecord) error

	// Get retrieves a machine by its id.
	Get(ctx context.Context, id string) (*MachineRecord, error)

	// List retrieves machines matching the given filters.
	List(ctx context.Context, filters MachineFilters) ([]*MachineRecord, error)

	// Retire soft-retires a machine.
	Retire(ctx context.Context, id string) error

	// Exists checks whether a machine exists (for validation).
	Exists(ctx context.Context, id string) (bool, error)
}

// MachineRecord represents a machine as stored in persistence.
type MachineRecord struct {
	ID            string
	Hostname      string
	HardwareClass string
	Status        string // "active" or "retired"
	LastSeenAt    string
	CreatedAt     string
}

// MachineFilters contains filter options for querying machines.
type MachineFilters struct {
	Status string
}

// SnapshotRepository defines the secondary port for snapshot persistence.
// Snapshots are immutable and append-only; there is no update or delete.
type SnapshotRepository interface {
	// Create persists a new snapshot, its linkage edges and the machine
	// last-seen update in one transaction: a failure leaves none of them
	// behind. Fails with ConflictError if the (definition, machine,
	// observed-at) ordering invariant would break. An empty machineLastSeen
	// skips the last-seen update.
	Create(ctx context.Context, snap *SnapshotRecord, edges []*EdgeRecord, machineLastSeen string) error

	// Get retrieves a snapshot by its id.
	Get(ctx context.Context, id string) (*SnapshotRecord, error)

	// Latest returns the newest snapshot for a (definition, machine) pair,
	// or nil when the machine has never reported.
	Latest(ctx context.Context, definitionPath, machineID string) (*SnapshotRecord, error)

	// LatestPerMachine returns, for each machine that has reported on the
	// definition, its newest snapshot observed at or before asOf
	// (unix nanoseconds).
	LatestPerMachine(ctx context.Context, definitionPath string, asOf int64) ([]*SnapshotRecord, error)

	// History returns all snapshots for a (definition, machine) pair in
	// observed-at order, oldest first.
	History(ctx context.Context, definitionPath, machineID string) ([]*SnapshotRecord, error)
}

// SnapshotRecord represents one immutable observation of a definition on a
// machine. ObservedAt is unix nanoseconds so the per-pair total ordering
// invariant can be enforced exactly.
type SnapshotRecord struct {
	ID             string
	DefinitionPath string
	MachineID      string
	ContentHash    string
	RevisionID     string
	DiffRef        string
	ObservedAt     int64
	NoOp           bool
	CreatedAt      string
}

// AnnotationRepository defines the secondary port for annotation persistence.
type AnnotationRepository interface {
	// Create persists a new annotation and its structural edges in one
	// transaction: a failure leaves neither the annotation nor any edge
	// behind.
	Create(ctx context.Context, ann *AnnotationRecord, edges []*EdgeRecord) error

	// Get retrieves an annotation by its id.
	Get(ctx context.Context, id string) (*AnnotationRecord, error)

	// List retrieves annotations matching the given filters.
	List(ctx context.Context, filters AnnotationFilters) ([]*AnnotationRecord, error)

	// MarkResolved transitions an annotation to resolved and stores the
	// resolution edge in the same transaction. A nil edge skips the edge
	// write.
	MarkResolved(ctx context.Context, id, resolvedByID string, edge *EdgeRecord) error

	// GetNextID returns the next available annotation ID.
	GetNextID(ctx context.Context) (string, error)
}

// AnnotationRecord represents an annotation as stored in persistence.
type AnnotationRecord struct {
	ID            string
	Kind          string
	Body          string
	Source        string
	Status        string // "open"/"resolved" for resolvable kinds, "" otherwise
	PrimaryID     string
	PrimaryKind   string
	ResolvedByID  string
	MetricValue   float64 // benchmark only
	MetricUnit    string  // benchmark only
	HasMetric     bool
	Priority      string // roadmap only: LOW, MEDIUM, HIGH
	TrialDays     int    // roadmap trial tracking
	TrialCriteria string
	CreatedAt     string
	UpdatedAt     string
	ResolvedAt    string
}

// AnnotationFilters contains filter options for querying annotations.
type AnnotationFilters struct {
	Kinds     []string
	Status    string
	PrimaryID string
	// TouchingIDs restricts to annotations whose primary target or any
	// secondary reference is one of these entity ids.
	TouchingIDs []string
	SinceNanos  int64 // filter by created-at, 0 means no lower bound
	Limit       int
}

// EdgeRepository defines the secondary port for typed edge persistence.
// Edges are the only cross-entity references; entities never embed each other.
type EdgeRepository interface {
	// Create persists a new edge.
	Create(ctx context.Context, edge *EdgeRecord) error

	// Query retrieves edges matching the pattern; zero-valued fields match
	// anything.
	Query(ctx context.Context, pattern EdgePattern) ([]*EdgeRecord, error)

	// DeleteByFrom removes all edges of a kind originating at an entity.
	// Used only for wholesale drift report replacement.
	DeleteByFrom(ctx context.Context, kind graph.EdgeKind, fromID string) error
}

// EdgeRecord represents a typed edge as stored in persistence.
type EdgeRecord struct {
	ID        string
	Kind      string
	FromID    string
	FromKind  string
	ToID      string
	ToKind    string
	CreatedAt string
}

// EdgePattern matches edges by any combination of fields.
type EdgePattern struct {
	Kind   graph.EdgeKind
	FromID string
	ToID   string
}

// DriftReportRepository defines the secondary port for drift report persistence.
type DriftReportRepository interface {
	// Replace atomically supersedes any prior report for the definition,
	// including its explanation edges. Readers never observe a
	// half-replaced report.
	Replace(ctx context.Context, report *DriftReportRecord, explains []*EdgeRecord) error

	// GetByDefinition retrieves the current report for a definition.
	GetByDefinition(ctx context.Context, definitionPath string) (*DriftReportRecord, error)
}

// DriftReportRecord represents a drift report as stored in persistence.
// Payload is the deterministically-marshaled per-machine classification map;
// the record carries no wall-clock column so recomputation over an unchanged
// graph stores byte-identical rows.
type DriftReportRecord struct {
	ID              string
	DefinitionPath  string
	CanonicalHash   string
	CanonicalSource string
	GeneratedAt     int64
	Payload         string
}

// EntityResolver defines the secondary port for cross-kind identity lookup.
// Annotation targets are polymorphic, so services need to learn what kind of
// entity an id names before linking to it.
type EntityResolver interface {
	// ResolveKind returns the kind of the entity with the given id, or
	// ok=false when no entity has that id.
	ResolveKind(ctx context.Context, id string) (kind graph.EntityKind, ok bool, err error)
}
