package primary

import "context"

// QueryService defines the primary port for the graph query facade.
// Read-only: composes structural traversal with best-effort semantic search.
type QueryService interface {
	// Query returns structural matches first, then semantic matches,
	// deduplicated by entity id.
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)
}

// QueryRequest contains query parameters.
type QueryRequest struct {
	// Text drives both the structural substring filter and the semantic
	// search.
	Text string
	// Kinds restricts results to annotation kinds (empty means all).
	Kinds []string
	// DefinitionPath restricts results to annotations touching the
	// definition or its snapshots.
	DefinitionPath string
	// OpenOnly restricts to unresolved troubleshooting/roadmap entries.
	OpenOnly bool
	// SinceDays restricts to entries created in the last N days (0 = all).
	SinceDays int
	Limit     int
}

// QueryResponse contains ranked query results.
type QueryResponse struct {
	Results []*QueryResult
	// DegradedWarning is non-empty when semantic search was unavailable
	// and only structural results are returned.
	DegradedWarning string
}

// QueryResult is one ranked match.
type QueryResult struct {
	EntityID   string
	EntityKind string
	// Origin is "structural" or "semantic".
	Origin     string
	Annotation *Annotation // set when the entity is an annotation
}
