package driven

import (
	"context"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

// SearchStore executes compiled queries against the full-text index.
// Backed by SQLite FTS5 with bm25 ranking.
type SearchStore interface {
	// SearchDocuments returns one page of matching documents ranked by
	// relevance. Scores are normalised so that higher is better.
	SearchDocuments(ctx context.Context, query domain.ParsedQuery, opts domain.SearchOptions) ([]domain.SearchHit, error)

	// CountDocuments returns the total number of matches for pagination.
	CountDocuments(ctx context.Context, query domain.ParsedQuery) (int, error)

	// SuggestFileNames returns indexed file names starting with the
	// given prefix, for completion.
	SuggestFileNames(ctx context.Context, prefix string, limit int) ([]string, error)
}
