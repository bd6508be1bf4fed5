// Package primary defines the primary ports (driving interfaces) of the
// application: the five public graph operations plus the registry surface
// the CLI and MCP adapters call into.
package primary

import "context"

// IngestService defines the primary port for snapshot ingestion.
type IngestService interface {
	// IngestSnapshot records one immutable observation of a definition on
	// a machine. Auto-registers the definition/machine when configured;
	// otherwise fails with a typed not-found error.
	IngestSnapshot(ctx context.Context, req IngestSnapshotRequest) (*IngestSnapshotResponse, error)
}

// IngestSnapshotRequest is a raw observation tuple.
type IngestSnapshotRequest struct {
	DefinitionPath string
	MachineID      string
	ContentHash    string
	RevisionID     string
	DiffRef        string
	// ObservedAt is unix nanoseconds; zero means "now".
	ObservedAt int64

	// Baseline attributes used when the machine is auto-registered.
	MachineHostname      string
	MachineHardwareClass string
}

// IngestSnapshotResponse describes the recorded snapshot.
type IngestSnapshotResponse struct {
	Snapshot *Snapshot
	// NoOp is true when the content hash matched the machine's prior
	// snapshot; the observation is still recorded.
	NoOp bool
	// DefinitionCreated / MachineCreated report auto-registration.
	DefinitionCreated bool
	MachineCreated    bool
}

// Snapshot represents a snapshot entity at the port boundary.
type Snapshot struct {
	ID             string
	DefinitionPath string
	MachineID      string
	ContentHash    string
	RevisionID     string
	DiffRef        string
	ObservedAt     string // RFC3339Nano
	NoOp           bool
}
