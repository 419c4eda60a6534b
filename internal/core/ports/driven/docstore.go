package driven

import (
	"context"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

// DocumentStore persists extracted documents.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// UpsertDocument stores a document keyed by file path, updating the
	// existing row when the path is already indexed. The document ID is
	// populated on return.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// GetDocumentByPath retrieves a document by its file path.
	// Returns domain.ErrNotFound when the path is not indexed.
	GetDocumentByPath(ctx context.Context, filePath string) (*domain.Document, error)

	// DeleteDocumentByPath removes a document and its full-text entry.
	// Deleting an unindexed path is not an error.
	DeleteDocumentByPath(ctx context.Context, filePath string) error

	// ListFilePaths returns every indexed file path.
	ListFilePaths(ctx context.Context) ([]string, error)

	// DocumentStats summarises the corpus by file type.
	DocumentStats(ctx context.Context) (*domain.DocumentStats, error)
}

// FileChangeStore persists the change-detection ledger.
type FileChangeStore interface {
	// UpsertFileChange stores or updates the record for its file path.
	UpsertFileChange(ctx context.Context, rec *domain.FileChangeRecord) error

	// GetFileChange retrieves the record for a file path.
	// Returns domain.ErrNotFound when the path has never been seen.
	GetFileChange(ctx context.Context, filePath string) (*domain.FileChangeRecord, error)

	// DeleteFileChange removes the record for a file path.
	DeleteFileChange(ctx context.Context, filePath string) error

	// CountFileChangesByStatus counts ledger entries per status.
	CountFileChangesByStatus(ctx context.Context) (map[domain.FileChangeStatus]int, error)
}
