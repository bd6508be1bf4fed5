// Package semantic contains best-effort implementations of the semantic
// index port. The structural graph never depends on these for correctness.
package semantic

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// KeywordIndex is a SQLite-backed keyword index. It stands in for an external
// embedding backend: same narrow interface, purely lexical ranking. Rank is
// the number of query terms present in the indexed text, ties broken by
// entity id for determinism.
type KeywordIndex struct {
	db *sql.DB
}

// NewKeywordIndex creates a keyword index over the given database.
func NewKeywordIndex(db *sql.DB) *KeywordIndex {
	return &KeywordIndex{db: db}
}

// Index stores (or replaces) the text associated with an entity.
func (i *KeywordIndex) Index(ctx context.Context, entityID, text string) error {
	_, err := i.db.ExecContext(ctx,
		"INSERT INTO semantic_index (entity_id, content) VALUES (?, ?) ON CONFLICT(entity_id) DO UPDATE SET content = excluded.content, updated_at = CURRENT_TIMESTAMP",
		entityID, strings.ToLower(text),
	)
	if err != nil {
		return fmt.Errorf("failed to index entity: %w", err)
	}
	return nil
}

// Search returns up to k entity ids ranked by matched query terms.
func (i *KeywordIndex) Search(ctx context.Context, query string, k int) ([]string, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || k <= 0 {
		return nil, nil
	}

	rows, err := i.db.QueryContext(ctx, "SELECT entity_id, content FROM semantic_index")
	if err != nil {
		return nil, fmt.Errorf("failed to scan index: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id    string
		score int
	}
	var matches []scored

	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("failed to scan index row: %w", err)
		}
		score := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{id: id, score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].score != matches[b].score {
			return matches[a].score > matches[b].score
		}
		return matches[a].id < matches[b].id
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	ids := make([]string, len(matches))
	for n, m := range matches {
		ids[n] = m.id
	}
	return ids, nil
}
