package driven

import (
	"context"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

// VectorStore persists chunk embeddings and performs similarity search.
// The scan is exact: every stored vector is compared with the query.
type VectorStore interface {
	// AddRecords stores chunk embeddings. Records for chunk IDs that
	// already exist are replaced. All embeddings in one call must share
	// a length; a record whose embedding length differs from the rest
	// of the store fails with domain.ErrDimensionMismatch.
	AddRecords(ctx context.Context, records []domain.VectorRecord) error

	// SearchSimilar returns the topK stored chunks most similar to the
	// query embedding by cosine similarity, best first. A non-empty
	// filePath restricts candidates to chunks of that file.
	SearchSimilar(ctx context.Context, embedding []float32, topK int, filePath string) ([]domain.RetrievalResult, error)

	// DeleteByDocumentID removes all chunks of a document.
	DeleteByDocumentID(ctx context.Context, documentID int64) error

	// ClearVectors removes every stored chunk.
	ClearVectors(ctx context.Context) error

	// VectorStats summarises the store contents.
	VectorStats(ctx context.Context) (*domain.VectorStats, error)
}
