package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// DefinitionServiceImpl implements the DefinitionService interface.
type DefinitionServiceImpl struct {
	defRepo  secondary.DefinitionRepository
	snapRepo secondary.SnapshotRepository
	locks    *DefinitionLocks
}

// NewDefinitionService creates a new DefinitionService with injected dependencies.
func NewDefinitionService(
	defRepo secondary.DefinitionRepository,
	snapRepo secondary.SnapshotRepository,
	locks *DefinitionLocks,
) *DefinitionServiceImpl {
	return &DefinitionServiceImpl{defRepo: defRepo, snapRepo: snapRepo, locks: locks}
}

// AddDefinition registers a new logical config path.
func (s *DefinitionServiceImpl) AddDefinition(ctx context.Context, req primary.AddDefinitionRequest) (*primary.Definition, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return nil, fmt.Errorf("definition path is required")
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return nil, fmt.Errorf("definition path %s must not begin or end with a slash", path)
	}

	record := &secondary.DefinitionRecord{Path: path, Tags: req.Tags}
	if err := s.defRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return s.GetDefinition(ctx, path)
}

// GetDefinition retrieves a definition by path.
func (s *DefinitionServiceImpl) GetDefinition(ctx context.Context, path string) (*primary.Definition, error) {
	record, err := s.defRepo.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return definitionToPort(record), nil
}

// ListDefinitions lists definitions with optional filters.
func (s *DefinitionServiceImpl) ListDefinitions(ctx context.Context, filters primary.DefinitionFilters) ([]*primary.Definition, error) {
	records, err := s.defRepo.List(ctx, secondary.DefinitionFilters{
		Status: filters.Status,
		Tag:    filters.Tag,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	defs := make([]*primary.Definition, len(records))
	for i, r := range records {
		defs[i] = definitionToPort(r)
	}
	return defs, nil
}

// AdoptCanonical makes a content hash authoritative for a definition, either
// given directly or taken from an existing snapshot.
func (s *DefinitionServiceImpl) AdoptCanonical(ctx context.Context, req primary.AdoptCanonicalRequest) error {
	if req.Path == "" {
		return fmt.Errorf("definition path is required")
	}
	if (req.ContentHash == "") == (req.FromSnapshotID == "") {
		return fmt.Errorf("exactly one of content hash or snapshot id is required")
	}

	unlock := s.locks.Lock(req.Path)
	defer unlock()

	if _, err := s.defRepo.Get(ctx, req.Path); err != nil {
		return err
	}

	hash := req.ContentHash
	if req.FromSnapshotID != "" {
		snap, err := s.snapRepo.Get(ctx, req.FromSnapshotID)
		if err != nil {
			return err
		}
		if snap.DefinitionPath != req.Path {
			return fmt.Errorf("snapshot %s belongs to definition %s, not %s",
				snap.ID, snap.DefinitionPath, req.Path)
		}
		hash = snap.ContentHash
	}

	return s.defRepo.AdoptCanonical(ctx, req.Path, hash)
}

// RetireDefinition soft-retires a definition.
func (s *DefinitionServiceImpl) RetireDefinition(ctx context.Context, path string) error {
	if _, err := s.defRepo.Get(ctx, path); err != nil {
		return err
	}
	return s.defRepo.Retire(ctx, path)
}

func definitionToPort(r *secondary.DefinitionRecord) *primary.Definition {
	return &primary.Definition{
		Path:          r.Path,
		CanonicalHash: r.CanonicalHash,
		Tags:          r.Tags,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
