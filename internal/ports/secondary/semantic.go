package secondary

import "context"

// SemanticIndex defines the secondary port for best-effort fuzzy text
// retrieval. The structural core never depends on it for correctness: an
// index failure degrades annotation creation and query ranking, it never
// aborts them. A no-op implementation suffices for core tests.
type SemanticIndex interface {
	// Index associates free text with an entity id.
	Index(ctx context.Context, entityID, text string) error

	// Search returns up to k entity ids ranked by relevance to the query.
	Search(ctx context.Context, query string, k int) ([]string, error)
}
