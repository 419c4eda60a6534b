package driven

import (
	"context"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

// Reranker reorders retrieval candidates by relevance to the query.
// Implementations must not fail the retrieval: when scoring is impossible
// they return the candidates in a deterministic fallback order.
type Reranker interface {
	// Rerank scores the candidates against the query and returns the
	// topK best, in descending score order.
	Rerank(ctx context.Context, query string, candidates []domain.RetrievalResult, topK int) ([]domain.RetrievalResult, error)

	// Available reports whether the underlying scorer is usable.
	Available(ctx context.Context) bool
}
