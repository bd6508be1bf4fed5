package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/core/snapshot"
	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// IngestOptions configures auto-registration behavior.
type IngestOptions struct {
	AutoRegisterDefinitions bool
	AutoRegisterMachines    bool
}

// IngestServiceImpl implements the IngestService interface.
type IngestServiceImpl struct {
	defRepo     secondary.DefinitionRepository
	machineRepo secondary.MachineRepository
	snapRepo    secondary.SnapshotRepository
	locks       *DefinitionLocks
	opts        IngestOptions
	now         func() time.Time
}

// NewIngestService creates a new IngestService with injected dependencies.
func NewIngestService(
	defRepo secondary.DefinitionRepository,
	machineRepo secondary.MachineRepository,
	snapRepo secondary.SnapshotRepository,
	locks *DefinitionLocks,
	opts IngestOptions,
) *IngestServiceImpl {
	return &IngestServiceImpl{
		defRepo:     defRepo,
		machineRepo: machineRepo,
		snapRepo:    snapRepo,
		locks:       locks,
		opts:        opts,
		now:         time.Now,
	}
}

// IngestSnapshot records one immutable observation of a definition on a machine.
func (s *IngestServiceImpl) IngestSnapshot(ctx context.Context, req primary.IngestSnapshotRequest) (*primary.IngestSnapshotResponse, error) {
	if req.DefinitionPath == "" {
		return nil, fmt.Errorf("definition path is required")
	}
	if req.MachineID == "" {
		return nil, fmt.Errorf("machine id is required")
	}
	if req.ContentHash == "" {
		return nil, fmt.Errorf("content hash is required")
	}

	unlock := s.locks.Lock(req.DefinitionPath)
	defer unlock()

	resp := &primary.IngestSnapshotResponse{}

	// Validate or auto-register the definition.
	defExists, err := s.defRepo.Exists(ctx, req.DefinitionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to validate definition: %w", err)
	}
	if !defExists {
		if !s.opts.AutoRegisterDefinitions {
			return nil, graph.NotFound(graph.KindDefinition, req.DefinitionPath)
		}
		if err := s.defRepo.Create(ctx, &secondary.DefinitionRecord{Path: req.DefinitionPath}); err != nil {
			return nil, fmt.Errorf("failed to auto-register definition: %w", err)
		}
		resp.DefinitionCreated = true
	}

	// Validate or auto-register the machine with minimal attributes.
	machineExists, err := s.machineRepo.Exists(ctx, req.MachineID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate machine: %w", err)
	}
	if !machineExists {
		if !s.opts.AutoRegisterMachines {
			return nil, graph.NotFound(graph.KindMachine, req.MachineID)
		}
		err := s.machineRepo.Create(ctx, &secondary.MachineRecord{
			ID:            req.MachineID,
			Hostname:      req.MachineHostname,
			HardwareClass: req.MachineHardwareClass,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to auto-register machine: %w", err)
		}
		resp.MachineCreated = true
	}

	observedAt := req.ObservedAt
	if observedAt == 0 {
		observedAt = s.now().UnixNano()
	}

	// Monotonic ordering per (definition, machine) pair, and no-op
	// detection against the prior snapshot.
	prior, err := s.snapRepo.Latest(ctx, req.DefinitionPath, req.MachineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior snapshot: %w", err)
	}
	noOp := false
	if prior != nil {
		observedAt = snapshot.NextObservedAt(prior.ObservedAt, observedAt)
		noOp = snapshot.IsNoOp(prior.ContentHash, req.ContentHash)
	}

	record := &secondary.SnapshotRecord{
		ID:             uuid.NewString(),
		DefinitionPath: req.DefinitionPath,
		MachineID:      req.MachineID,
		ContentHash:    req.ContentHash,
		RevisionID:     req.RevisionID,
		DiffRef:        req.DiffRef,
		ObservedAt:     observedAt,
		NoOp:           noOp,
	}
	// Structural linkage: definition -> snapshot -> machine. The snapshot,
	// its edges and the machine's last-seen all land in one transaction.
	edges := []*secondary.EdgeRecord{
		{Kind: string(graph.EdgeSnapshotOf), FromID: record.ID, FromKind: string(graph.KindSnapshot), ToID: req.DefinitionPath, ToKind: string(graph.KindDefinition)},
		{Kind: string(graph.EdgeObservedOn), FromID: record.ID, FromKind: string(graph.KindSnapshot), ToID: req.MachineID, ToKind: string(graph.KindMachine)},
	}
	seen := time.Unix(0, observedAt).UTC().Format(time.RFC3339)
	if err := s.snapRepo.Create(ctx, record, edges, seen); err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	resp.NoOp = noOp
	resp.Snapshot = snapshotToPort(record)
	return resp, nil
}

func snapshotToPort(r *secondary.SnapshotRecord) *primary.Snapshot {
	return &primary.Snapshot{
		ID:             r.ID,
		DefinitionPath: r.DefinitionPath,
		MachineID:      r.MachineID,
		ContentHash:    r.ContentHash,
		RevisionID:     r.RevisionID,
		DiffRef:        r.DiffRef,
		ObservedAt:     time.Unix(0, r.ObservedAt).UTC().Format(time.RFC3339Nano),
		NoOp:           r.NoOp,
	}
}
