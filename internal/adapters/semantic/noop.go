package semantic

import "context"

// Noop is a semantic index that indexes nothing and finds nothing. Used when
// semantic indexing is disabled and as the stub for core tests: the
// structural graph must behave identically with or without a real index.
type Noop struct{}

// NewNoop creates a no-op semantic index.
func NewNoop() *Noop {
	return &Noop{}
}

// Index discards the text.
func (Noop) Index(ctx context.Context, entityID, text string) error {
	return nil
}

// Search finds nothing.
func (Noop) Search(ctx context.Context, query string, k int) ([]string, error) {
	return nil, nil
}
