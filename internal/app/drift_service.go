package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/dotgraph/internal/core/drift"
	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// DriftOptions configures classification policy.
type DriftOptions struct {
	// MajorityFallback permits deriving the canonical hash from a strict
	// plurality when no explicit canonical is adopted.
	MajorityFallback bool
	// FreshnessHours is the stale threshold; zero disables staleness.
	FreshnessHours int
}

// DriftServiceImpl implements the DriftService interface.
type DriftServiceImpl struct {
	defRepo     secondary.DefinitionRepository
	machineRepo secondary.MachineRepository
	snapRepo    secondary.SnapshotRepository
	annRepo     secondary.AnnotationRepository
	edgeRepo    secondary.EdgeRepository
	reportRepo  secondary.DriftReportRepository
	locks       *DefinitionLocks
	opts        DriftOptions
	now         func() time.Time
}

// NewDriftService creates a new DriftService with injected dependencies.
func NewDriftService(
	defRepo secondary.DefinitionRepository,
	machineRepo secondary.MachineRepository,
	snapRepo secondary.SnapshotRepository,
	annRepo secondary.AnnotationRepository,
	edgeRepo secondary.EdgeRepository,
	reportRepo secondary.DriftReportRepository,
	locks *DefinitionLocks,
	opts DriftOptions,
) *DriftServiceImpl {
	return &DriftServiceImpl{
		defRepo:     defRepo,
		machineRepo: machineRepo,
		snapRepo:    snapRepo,
		annRepo:     annRepo,
		edgeRepo:    edgeRepo,
		reportRepo:  reportRepo,
		locks:       locks,
		opts:        opts,
		now:         time.Now,
	}
}

// reportPayload is the persisted shape of the per-machine classification.
// Field order and sorted machine order keep recomputation byte-identical.
type reportPayload struct {
	Machines []payloadMachine `json:"machines"`
}

type payloadMachine struct {
	MachineID          string   `json:"machine_id"`
	Class              string   `json:"class"`
	SnapshotID         string   `json:"snapshot_id,omitempty"`
	ContentHash        string   `json:"content_hash,omitempty"`
	ObservedAt         int64    `json:"observed_at,omitempty"`
	RationaleID        string   `json:"rationale_id,omitempty"`
	TroubleshootingIDs []string `json:"troubleshooting_ids,omitempty"`
}

// ComputeDrift classifies every active machine for a definition and replaces
// the stored report wholesale.
func (s *DriftServiceImpl) ComputeDrift(ctx context.Context, definitionPath string) (*primary.DriftReport, error) {
	if definitionPath == "" {
		return nil, fmt.Errorf("definition path is required")
	}

	unlock := s.locks.Lock(definitionPath)
	defer unlock()

	def, err := s.defRepo.Get(ctx, definitionPath)
	if err != nil {
		return nil, err
	}

	// Retired machines drop out of classification; their snapshots stay in
	// history but no longer produce unknown noise in every report.
	machines, err := s.machineRepo.List(ctx, secondary.MachineFilters{Status: "active"})
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	machineIDs := make([]string, len(machines))
	active := make(map[string]bool, len(machines))
	for i, m := range machines {
		machineIDs[i] = m.ID
		active[m.ID] = true
	}

	latest, err := s.snapRepo.LatestPerMachine(ctx, definitionPath, s.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshots: %w", err)
	}

	observations := make(map[string]drift.Observation, len(latest))
	for _, snap := range latest {
		if !active[snap.MachineID] {
			continue
		}
		rationaleID, err := s.findRationale(ctx, definitionPath, snap.MachineID, snap.ID)
		if err != nil {
			return nil, err
		}
		observations[snap.MachineID] = drift.Observation{
			MachineID:   snap.MachineID,
			SnapshotID:  snap.ID,
			ContentHash: snap.ContentHash,
			ObservedAt:  snap.ObservedAt,
			NoOp:        snap.NoOp,
			RationaleID: rationaleID,
		}
	}

	result, err := drift.Compute(drift.Input{
		DefinitionID:     definitionPath,
		CanonicalHash:    def.CanonicalHash,
		MajorityFallback: s.opts.MajorityFallback,
		FreshnessWindow:  int64(s.opts.FreshnessHours) * int64(time.Hour),
		Machines:         machineIDs,
		Observations:     observations,
	})
	if err != nil {
		return nil, err
	}

	report := &primary.DriftReport{
		ID:              reportID(definitionPath),
		DefinitionPath:  definitionPath,
		CanonicalHash:   result.CanonicalHash,
		CanonicalSource: result.CanonicalSource,
		GeneratedAt:     formatNanos(result.GeneratedAt),
	}

	payload := reportPayload{Machines: make([]payloadMachine, 0, len(result.Machines))}
	var explains []*secondary.EdgeRecord
	for _, m := range result.Machines {
		md := &primary.MachineDrift{
			MachineID:   m.MachineID,
			Class:       string(m.Class),
			SnapshotID:  m.SnapshotID,
			ContentHash: m.ContentHash,
			RationaleID: m.RationaleID,
		}
		if m.ObservedAt != 0 {
			md.ObservedAt = formatNanos(m.ObservedAt)
		}

		if m.Class == graph.ClassDivergedIntentional || m.Class == graph.ClassDivergedUnexplained {
			tsIDs, err := s.findTroubleshooting(ctx, definitionPath, m.MachineID, m.SnapshotID)
			if err != nil {
				return nil, err
			}
			md.TroubleshootingIDs = tsIDs
		}

		if md.RationaleID != "" {
			explains = append(explains, explainsEdge(report.ID, md.RationaleID))
		}
		for _, tsID := range md.TroubleshootingIDs {
			explains = append(explains, explainsEdge(report.ID, tsID))
		}

		report.Machines = append(report.Machines, md)
		payload.Machines = append(payload.Machines, payloadMachine{
			MachineID:          md.MachineID,
			Class:              md.Class,
			SnapshotID:         md.SnapshotID,
			ContentHash:        md.ContentHash,
			ObservedAt:         m.ObservedAt,
			RationaleID:        md.RationaleID,
			TroubleshootingIDs: md.TroubleshootingIDs,
		})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report payload: %w", err)
	}

	record := &secondary.DriftReportRecord{
		ID:              report.ID,
		DefinitionPath:  definitionPath,
		CanonicalHash:   result.CanonicalHash,
		CanonicalSource: result.CanonicalSource,
		GeneratedAt:     result.GeneratedAt,
		Payload:         string(raw),
	}
	if err := s.reportRepo.Replace(ctx, record, explains); err != nil {
		return nil, fmt.Errorf("failed to store drift report: %w", err)
	}

	// The report id is stable per definition, so this edge is idempotent.
	subject := &secondary.EdgeRecord{
		Kind: string(graph.EdgeReportsOn), FromID: report.ID, FromKind: string(graph.KindDriftReport),
		ToID: definitionPath, ToKind: string(graph.KindDefinition),
	}
	if err := s.edgeRepo.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to link report: %w", err)
	}

	return report, nil
}

// GetDriftReport returns the current stored report for a definition.
func (s *DriftServiceImpl) GetDriftReport(ctx context.Context, definitionPath string) (*primary.DriftReport, error) {
	record, err := s.reportRepo.GetByDefinition(ctx, definitionPath)
	if err != nil {
		return nil, err
	}

	var payload reportPayload
	if err := json.Unmarshal([]byte(record.Payload), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
	}

	report := &primary.DriftReport{
		ID:              record.ID,
		DefinitionPath:  record.DefinitionPath,
		CanonicalHash:   record.CanonicalHash,
		CanonicalSource: record.CanonicalSource,
		GeneratedAt:     formatNanos(record.GeneratedAt),
	}
	for _, m := range payload.Machines {
		md := &primary.MachineDrift{
			MachineID:          m.MachineID,
			Class:              m.Class,
			SnapshotID:         m.SnapshotID,
			ContentHash:        m.ContentHash,
			RationaleID:        m.RationaleID,
			TroubleshootingIDs: m.TroubleshootingIDs,
		}
		if m.ObservedAt != 0 {
			md.ObservedAt = formatNanos(m.ObservedAt)
		}
		report.Machines = append(report.Machines, md)
	}
	return report, nil
}

// findRationale locates the rationale annotation justifying a divergence on
// one machine: annotations on the latest snapshot win, then rationales on the
// definition that also reference the machine.
func (s *DriftServiceImpl) findRationale(ctx context.Context, definitionPath, machineID, snapshotID string) (string, error) {
	onSnap, err := s.annRepo.List(ctx, secondary.AnnotationFilters{
		Kinds:     []string{string(graph.AnnotationRationale)},
		PrimaryID: snapshotID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up rationales: %w", err)
	}
	if len(onSnap) > 0 {
		return newestAnnotationID(onSnap), nil
	}

	onDef, err := s.annRepo.List(ctx, secondary.AnnotationFilters{
		Kinds:     []string{string(graph.AnnotationRationale)},
		PrimaryID: definitionPath,
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up rationales: %w", err)
	}
	var scoped []*secondary.AnnotationRecord
	for _, ann := range onDef {
		touches, err := s.touchesMachine(ctx, ann.ID, machineID)
		if err != nil {
			return "", err
		}
		if touches {
			scoped = append(scoped, ann)
		}
	}
	if len(scoped) > 0 {
		return newestAnnotationID(scoped), nil
	}
	return "", nil
}

// findTroubleshooting collects open troubleshooting annotations touching the
// definition, machine, or latest snapshot, newest first.
func (s *DriftServiceImpl) findTroubleshooting(ctx context.Context, definitionPath, machineID, snapshotID string) ([]string, error) {
	touching := []string{definitionPath, machineID}
	if snapshotID != "" {
		touching = append(touching, snapshotID)
	}
	anns, err := s.annRepo.List(ctx, secondary.AnnotationFilters{
		Kinds:       []string{string(graph.AnnotationTroubleshooting)},
		Status:      "open",
		TouchingIDs: touching,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up troubleshooting annotations: %w", err)
	}

	sort.Slice(anns, func(i, j int) bool {
		if anns[i].CreatedAt != anns[j].CreatedAt {
			return anns[i].CreatedAt > anns[j].CreatedAt
		}
		return anns[i].ID > anns[j].ID
	})
	ids := make([]string, 0, len(anns))
	for _, ann := range anns {
		ids = append(ids, ann.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

// touchesMachine reports whether the annotation has a references edge to the
// machine.
func (s *DriftServiceImpl) touchesMachine(ctx context.Context, annotationID, machineID string) (bool, error) {
	edges, err := s.edgeRepo.Query(ctx, secondary.EdgePattern{
		Kind:   graph.EdgeReferences,
		FromID: annotationID,
		ToID:   machineID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to query annotation references: %w", err)
	}
	return len(edges) > 0, nil
}

// newestAnnotationID picks the most recent annotation deterministically:
// created-at descending, id descending as tie-break.
func newestAnnotationID(anns []*secondary.AnnotationRecord) string {
	best := anns[0]
	for _, ann := range anns[1:] {
		if ann.CreatedAt > best.CreatedAt ||
			(ann.CreatedAt == best.CreatedAt && ann.ID > best.ID) {
			best = ann
		}
	}
	return best.ID
}

// reportID derives the stable report identity from the definition path.
func reportID(definitionPath string) string {
	return "RPT-" + strings.ReplaceAll(definitionPath, "/", "-")
}

func explainsEdge(reportID, annotationID string) *secondary.EdgeRecord {
	return &secondary.EdgeRecord{
		Kind:     string(graph.EdgeExplains),
		FromID:   reportID,
		FromKind: string(graph.KindDriftReport),
		ToID:     annotationID,
		ToKind:   string(graph.KindAnnotation),
	}
}

func formatNanos(nanos int64) string {
	if nanos == 0 {
		return ""
	}
	return time.Unix(0, nanos).UTC().Format(time.RFC3339Nano)
}
