package primary

import "context"

// DriftService defines the primary port for drift computation.
type DriftService interface {
	// ComputeDrift classifies every tracked machine for a definition and
	// replaces the definition's drift report wholesale. Re-running with no
	// intervening writes yields an identical report.
	ComputeDrift(ctx context.Context, definitionPath string) (*DriftReport, error)

	// GetDriftReport returns the current stored report for a definition.
	GetDriftReport(ctx context.Context, definitionPath string) (*DriftReport, error)
}

// DriftReport is the regenerable classification artifact for one definition.
type DriftReport struct {
	ID              string
	DefinitionPath  string
	CanonicalHash   string
	CanonicalSource string // "explicit", "majority", or "none"
	GeneratedAt     string // RFC3339Nano of the newest considered snapshot
	Machines        []*MachineDrift
}

// MachineDrift is the classification of one machine in a drift report.
type MachineDrift struct {
	MachineID   string
	Class       string // in_sync, diverged_intentional, diverged_unexplained, stale, unknown
	SnapshotID  string
	ContentHash string
	ObservedAt  string
	// RationaleID justifies a diverged_intentional classification.
	RationaleID string
	// TroubleshootingIDs are open troubleshooting annotations touching
	// this definition/machine pair, most recent first.
	TroubleshootingIDs []string
}
