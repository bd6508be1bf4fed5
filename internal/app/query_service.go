package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// DefaultQueryLimit caps result sets when the caller does not.
const DefaultQueryLimit = 20

// QueryServiceImpl implements the QueryService interface.
type QueryServiceImpl struct {
	annRepo  secondary.AnnotationRepository
	snapRepo secondary.SnapshotRepository
	edgeRepo secondary.EdgeRepository
	resolver secondary.EntityResolver
	index    secondary.SemanticIndex
	now      func() time.Time
}

// NewQueryService creates a new QueryService with injected dependencies.
func NewQueryService(
	annRepo secondary.AnnotationRepository,
	snapRepo secondary.SnapshotRepository,
	edgeRepo secondary.EdgeRepository,
	resolver secondary.EntityResolver,
	index secondary.SemanticIndex,
) *QueryServiceImpl {
	return &QueryServiceImpl{
		annRepo:  annRepo,
		snapRepo: snapRepo,
		edgeRepo: edgeRepo,
		resolver: resolver,
		index:    index,
		now:      time.Now,
	}
}

// Query composes structural traversal with best-effort semantic search.
// Structural results come first; semantic hits fill the remainder.
func (s *QueryServiceImpl) Query(ctx context.Context, req primary.QueryRequest) (*primary.QueryResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	filters := secondary.AnnotationFilters{Kinds: req.Kinds}
	if req.OpenOnly {
		filters.Status = "open"
	}
	if req.SinceDays > 0 {
		filters.SinceNanos = s.now().AddDate(0, 0, -req.SinceDays).UnixNano()
	}
	if req.DefinitionPath != "" {
		touching, err := s.definitionScope(ctx, req.DefinitionPath)
		if err != nil {
			return nil, err
		}
		filters.TouchingIDs = touching
	}

	records, err := s.annRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}

	resp := &primary.QueryResponse{}
	seen := make(map[string]bool)

	needle := strings.ToLower(req.Text)
	for _, r := range records {
		if needle != "" && !strings.Contains(strings.ToLower(r.Body), needle) {
			continue
		}
		if len(resp.Results) >= limit {
			break
		}
		seen[r.ID] = true
		resp.Results = append(resp.Results, &primary.QueryResult{
			EntityID:   r.ID,
			EntityKind: string(graph.KindAnnotation),
			Origin:     "structural",
			Annotation: annotationToPort(r),
		})
	}

	if req.Text == "" || len(resp.Results) >= limit {
		return resp, nil
	}

	// Semantic search widens recall past exact substrings; its failure
	// degrades the query, it never fails it.
	ids, err := s.index.Search(ctx, req.Text, limit)
	if err != nil {
		warn := &graph.DegradedModeWarning{Op: "query", Err: err}
		resp.DegradedWarning = warn.Error()
		return resp, nil
	}

	for _, id := range ids {
		if seen[id] || len(resp.Results) >= limit {
			continue
		}
		result, ok, err := s.semanticResult(ctx, id, filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		seen[id] = true
		resp.Results = append(resp.Results, result)
	}

	return resp, nil
}

// semanticResult turns a semantic hit into a result, re-applying the
// structural filters the index knows nothing about.
func (s *QueryServiceImpl) semanticResult(ctx context.Context, id string, filters secondary.AnnotationFilters) (*primary.QueryResult, bool, error) {
	kind, ok, err := s.resolver.ResolveKind(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve semantic hit: %w", err)
	}
	if !ok {
		// Stale index entry; the entity is gone.
		return nil, false, nil
	}

	result := &primary.QueryResult{
		EntityID:   id,
		EntityKind: string(kind),
		Origin:     "semantic",
	}
	if kind != graph.KindAnnotation {
		return result, true, nil
	}

	ann, err := s.annRepo.Get(ctx, id)
	if err != nil {
		if graph.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	match, err := s.annotationMatches(ctx, ann, filters)
	if err != nil {
		return nil, false, err
	}
	if !match {
		return nil, false, nil
	}
	result.Annotation = annotationToPort(ann)
	return result, true, nil
}

// annotationMatches re-applies the structural filters to a semantic hit.
func (s *QueryServiceImpl) annotationMatches(ctx context.Context, ann *secondary.AnnotationRecord, filters secondary.AnnotationFilters) (bool, error) {
	if len(filters.Kinds) > 0 {
		found := false
		for _, k := range filters.Kinds {
			if ann.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	if filters.Status != "" && ann.Status != filters.Status {
		return false, nil
	}
	if len(filters.TouchingIDs) > 0 {
		touches, err := s.touchesAny(ctx, ann, filters.TouchingIDs)
		if err != nil || !touches {
			return false, err
		}
	}
	return true, nil
}

func (s *QueryServiceImpl) touchesAny(ctx context.Context, ann *secondary.AnnotationRecord, ids []string) (bool, error) {
	for _, id := range ids {
		if ann.PrimaryID == id {
			return true, nil
		}
	}
	refs, err := s.edgeRepo.Query(ctx, secondary.EdgePattern{
		Kind:   graph.EdgeReferences,
		FromID: ann.ID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to query annotation references: %w", err)
	}
	for _, e := range refs {
		for _, id := range ids {
			if e.ToID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// definitionScope expands a definition path to the ids an annotation can
// touch: the definition itself plus every snapshot of it.
func (s *QueryServiceImpl) definitionScope(ctx context.Context, definitionPath string) ([]string, error) {
	ids := []string{definitionPath}
	edges, err := s.edgeRepo.Query(ctx, secondary.EdgePattern{
		Kind: graph.EdgeSnapshotOf,
		ToID: definitionPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expand definition scope: %w", err)
	}
	for _, e := range edges {
		ids = append(ids, e.FromID)
	}
	return ids, nil
}

func annotationToPort(r *secondary.AnnotationRecord) *primary.Annotation {
	return &primary.Annotation{
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
}
