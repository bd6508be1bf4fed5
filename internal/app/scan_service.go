package app

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"lukechampine.com/blake3"

	"github.com/example/dotgraph/internal/manifest"
	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// ScanService walks the dotfiles manifest on the local machine, hashes every
// tracked file and ingests one snapshot per definition. It composes the
// ingest and annotation surfaces; it owns no storage of its own.
type ScanService struct {
	ingest      primary.IngestService
	annotations primary.AnnotationService
	vcs         secondary.VCS
}

// NewScanService creates a new ScanService with injected dependencies.
func NewScanService(
	ingest primary.IngestService,
	annotations primary.AnnotationService,
	vcs secondary.VCS,
) *ScanService {
	return &ScanService{ingest: ingest, annotations: annotations, vcs: vcs}
}

// ScanRequest identifies the manifest and the observing machine.
type ScanRequest struct {
	ManifestPath  string
	MachineID     string
	Hostname      string
	HardwareClass string
}

// ScanResult describes the outcome for one manifest entry.
type ScanResult struct {
	DefinitionPath string
	SnapshotID     string
	ContentHash    string
	RevisionID     string
	// VCSType is the detected backing store of the dotfiles repository,
	// secondary.VCSTypeGit or secondary.VCSTypeJJ, empty for a bare directory.
	VCSType string
	Dirty   bool
	NoOp    bool
	// Err is set when this entry failed; other entries still proceed.
	Err error
}

// Scan hashes every manifest entry and ingests the observations. A missing
// or unreadable file fails that entry only, never the whole scan.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) ([]ScanResult, error) {
	if req.MachineID == "" {
		return nil, fmt.Errorf("machine id is required")
	}

	m, err := manifest.Load(req.ManifestPath)
	if err != nil {
		return nil, err
	}

	vcsType := s.vcs.DetectType(m.Repo)

	results := make([]ScanResult, 0, len(m.Definitions))
	for _, defPath := range m.Paths() {
		result := s.scanEntry(ctx, m, defPath, req)
		result.VCSType = vcsType
		results = append(results, result)
	}
	return results, nil
}

func (s *ScanService) scanEntry(ctx context.Context, m *manifest.Manifest, defPath string, req ScanRequest) ScanResult {
	result := ScanResult{DefinitionPath: defPath}

	filePath := m.FilePath(defPath)
	raw, err := os.ReadFile(filePath)
	if err != nil {
		result.Err = fmt.Errorf("failed to read %s: %w", filePath, err)
		return result
	}

	sum := blake3.Sum256(raw)
	result.ContentHash = hex.EncodeToString(sum[:])

	// Revision context is best-effort; untracked files still get snapshots.
	repoFile := m.Definitions[defPath].File
	if rev, err := s.vcs.CurrentRevision(ctx, m.Repo, repoFile); err == nil && rev != nil {
		result.RevisionID = rev.ID
	}
	if dirty, err := s.vcs.IsDirty(ctx, m.Repo, repoFile); err == nil {
		result.Dirty = dirty
	}

	resp, err := s.ingest.IngestSnapshot(ctx, primary.IngestSnapshotRequest{
		DefinitionPath:       defPath,
		MachineID:            req.MachineID,
		ContentHash:          result.ContentHash,
		RevisionID:           result.RevisionID,
		MachineHostname:      req.Hostname,
		MachineHardwareClass: req.HardwareClass,
	})
	if err != nil {
		result.Err = err
		return result
	}

	result.SnapshotID = resp.Snapshot.ID
	result.NoOp = resp.NoOp
	return result
}

// BackfillRequest identifies a definition whose VCS history should seed
// rationale annotations.
type BackfillRequest struct {
	ManifestPath   string
	DefinitionPath string
	// Limit caps how many revisions to backfill; zero means 20.
	Limit int
}

// BackfillResult describes one annotation created from history.
type BackfillResult struct {
	AnnotationID string
	RevisionID   string
	Summary      string
}

// Backfill converts recent VCS history for a definition into rationale
// annotations, so why-knowledge committed long ago becomes queryable.
func (s *ScanService) Backfill(ctx context.Context, req BackfillRequest) ([]BackfillResult, error) {
	if req.DefinitionPath == "" {
		return nil, fmt.Errorf("definition path is required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	m, err := manifest.Load(req.ManifestPath)
	if err != nil {
		return nil, err
	}
	entry, ok := m.Definitions[req.DefinitionPath]
	if !ok {
		return nil, fmt.Errorf("definition %s is not in the manifest", req.DefinitionPath)
	}

	revisions, err := s.vcs.History(ctx, m.Repo, entry.File, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	results := make([]BackfillResult, 0, len(revisions))
	for _, rev := range revisions {
		body := fmt.Sprintf("%s (%s, %s)", rev.Summary, rev.ID, rev.When)
		resp, err := s.annotations.Annotate(ctx, primary.AnnotateRequest{
			Kind:      "rationale",
			Body:      body,
			Source:    "vcs-history",
			PrimaryID: req.DefinitionPath,
		})
		if err != nil {
			return results, fmt.Errorf("failed to backfill revision %s: %w", rev.ID, err)
		}
		results = append(results, BackfillResult{
			AnnotationID: resp.Annotation.ID,
			RevisionID:   rev.ID,
			Summary:      rev.Summary,
		})
	}
	return results, nil
}
