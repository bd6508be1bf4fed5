package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/dotgraph/internal/core/annotation"
	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// AnnotationServiceImpl implements the AnnotationService interface.
type AnnotationServiceImpl struct {
	annRepo  secondary.AnnotationRepository
	edgeRepo secondary.EdgeRepository
	resolver secondary.EntityResolver
	index    secondary.SemanticIndex

	// mu serializes annotation writes: ids are allocated from the current
	// maximum, so allocation and insert must not interleave.
	mu sync.Mutex
}

// NewAnnotationService creates a new AnnotationService with injected dependencies.
func NewAnnotationService(
	annRepo secondary.AnnotationRepository,
	edgeRepo secondary.EdgeRepository,
	resolver secondary.EntityResolver,
	index secondary.SemanticIndex,
) *AnnotationServiceImpl {
	return &AnnotationServiceImpl{
		annRepo:  annRepo,
		edgeRepo: edgeRepo,
		resolver: resolver,
		index:    index,
	}
}

// Annotate attaches typed knowledge to a graph entity. The structural write
// is authoritative; semantic indexing failure degrades, it never aborts.
func (s *AnnotationServiceImpl) Annotate(ctx context.Context, req primary.AnnotateRequest) (*primary.AnnotateResponse, error) {
	kind := graph.AnnotationKind(req.Kind)

	primaryKind, primaryExists, err := s.resolver.ResolveKind(ctx, req.PrimaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve primary target: %w", err)
	}

	guard := annotation.CanCreate(annotation.CreateContext{
		Kind:          kind,
		Body:          req.Body,
		PrimaryExists: primaryExists,
		PrimaryID:     req.PrimaryID,
		HasMetric:     req.HasMetric,
	})
	if !guard.Allowed {
		if !primaryExists && graph.ValidAnnotationKind(kind) && req.Body != "" {
			return nil, graph.NotFound("entity", req.PrimaryID)
		}
		return nil, guard.Error()
	}

	if req.Priority != "" && req.Priority != "LOW" && req.Priority != "MEDIUM" && req.Priority != "HIGH" {
		return nil, fmt.Errorf("invalid priority %s (want LOW, MEDIUM, or HIGH)", req.Priority)
	}

	// Secondary targets must exist before we link to them.
	secondaryKinds := make(map[string]graph.EntityKind, len(req.SecondaryIDs))
	for _, id := range req.SecondaryIDs {
		k, ok, err := s.resolver.ResolveKind(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve secondary target: %w", err)
		}
		if !ok {
			return nil, graph.NotFound("entity", id)
		}
		secondaryKinds[id] = k
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextID, err := s.annRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate annotation ID: %w", err)
	}

	record := &secondary.AnnotationRecord{
		ID:            nextID,
		Kind:          string(kind),
		Body:          req.Body,
		Source:        req.Source,
		Status:        annotation.InitialStatus(kind),
		PrimaryID:     req.PrimaryID,
		PrimaryKind:   string(primaryKind),
		MetricValue:   req.MetricValue,
		MetricUnit:    req.MetricUnit,
		HasMetric:     req.HasMetric,
		Priority:      req.Priority,
		TrialDays:     req.TrialDays,
		TrialCriteria: req.TrialCriteria,
	}
	// Structural edges make the annotation discoverable without any
	// semantic search at all. They go in with the annotation in one
	// transaction: a reported failure leaves nothing in the graph.
	edges := []*secondary.EdgeRecord{{
		Kind: string(graph.EdgeAnnotates), FromID: nextID, FromKind: string(graph.KindAnnotation),
		ToID: req.PrimaryID, ToKind: string(primaryKind),
	}}
	for _, id := range req.SecondaryIDs {
		edges = append(edges, &secondary.EdgeRecord{
			Kind: string(graph.EdgeReferences), FromID: nextID, FromKind: string(graph.KindAnnotation),
			ToID: id, ToKind: string(secondaryKinds[id]),
		})
	}
	if err := s.annRepo.Create(ctx, record, edges); err != nil {
		return nil, fmt.Errorf("failed to create annotation: %w", err)
	}

	resp := &primary.AnnotateResponse{}

	// Best-effort: indexing failure is surfaced, never fatal.
	if err := s.index.Index(ctx, nextID, req.Body); err != nil {
		warn := &graph.DegradedModeWarning{Op: "annotate", Err: err}
		resp.DegradedWarning = warn.Error()
	}

	created, err := s.annRepo.Get(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created annotation: %w", err)
	}
	resp.Annotation = s.recordToAnnotation(ctx, created)
	return resp, nil
}

// ResolveAnnotation transitions an open annotation to resolved.
func (s *AnnotationServiceImpl) ResolveAnnotation(ctx context.Context, req primary.ResolveAnnotationRequest) error {
	ann, err := s.annRepo.Get(ctx, req.AnnotationID)
	if err != nil {
		return err
	}

	resolvedKind, resolverExists, err := s.resolver.ResolveKind(ctx, req.ResolvedByID)
	if err != nil {
		return fmt.Errorf("failed to resolve resolving entity: %w", err)
	}

	guard := annotation.CanResolve(annotation.ResolveContext{
		AnnotationID:     ann.ID,
		Kind:             graph.AnnotationKind(ann.Kind),
		Status:           ann.Status,
		ResolvedByExists: resolverExists,
		ResolvedByID:     req.ResolvedByID,
	})
	if !guard.Allowed {
		if !resolverExists && graph.AnnotationKind(ann.Kind).Resolvable() && ann.Status == "open" {
			return graph.NotFound("entity", req.ResolvedByID)
		}
		return &graph.InvalidTransitionError{
			Kind: graph.KindAnnotation,
			ID:   ann.ID,
			From: ann.Status,
			To:   "resolved",
		}
	}

	edge := &secondary.EdgeRecord{
		Kind: string(graph.EdgeResolvedBy), FromID: ann.ID, FromKind: string(graph.KindAnnotation),
		ToID: req.ResolvedByID, ToKind: string(resolvedKind),
	}
	if err := s.annRepo.MarkResolved(ctx, ann.ID, req.ResolvedByID, edge); err != nil {
		return fmt.Errorf("failed to resolve annotation: %w", err)
	}

	return nil
}

// GetAnnotation retrieves an annotation by ID.
func (s *AnnotationServiceImpl) GetAnnotation(ctx context.Context, id string) (*primary.Annotation, error) {
	record, err := s.annRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recordToAnnotation(ctx, record), nil
}

// ListAnnotations lists annotations with optional filters.
func (s *AnnotationServiceImpl) ListAnnotations(ctx context.Context, filters primary.AnnotationFilters) ([]*primary.Annotation, error) {
	var kinds []string
	if filters.Kind != "" {
		kinds = []string{filters.Kind}
	}
	records, err := s.annRepo.List(ctx, secondary.AnnotationFilters{
		Kinds:     kinds,
		Status:    filters.Status,
		PrimaryID: filters.PrimaryID,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}

	anns := make([]*primary.Annotation, len(records))
	for i, r := range records {
		anns[i] = s.recordToAnnotation(ctx, r)
	}
	return anns, nil
}

func (s *AnnotationServiceImpl) recordToAnnotation(ctx context.Context, r *secondary.AnnotationRecord) *primary.Annotation {
	ann := &primary.Annotation{
		ID:            r.ID,
		Kind:          r.Kind,
		Body:          r.Body,
		Source:        r.Source,
		Status:        r.Status,
		PrimaryID:     r.PrimaryID,
		PrimaryKind:   r.PrimaryKind,
		ResolvedByID:  r.ResolvedByID,
		MetricValue:   r.MetricValue,
		MetricUnit:    r.MetricUnit,
		HasMetric:     r.HasMetric,
		Priority:      r.Priority,
		TrialDays:     r.TrialDays,
		TrialCriteria: r.TrialCriteria,
		CreatedAt:     r.CreatedAt,
		ResolvedAt:    r.ResolvedAt,
	}

	// Secondary references live only in the edge arena.
	refs, err := s.edgeRepo.Query(ctx, secondary.EdgePattern{Kind: graph.EdgeReferences, FromID: r.ID})
	if err == nil {
		for _, e := range refs {
			ann.SecondaryIDs = append(ann.SecondaryIDs, e.ToID)
		}
	}

	return ann
}
