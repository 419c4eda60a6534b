package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension no extractor handles.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates the file exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyQuery indicates a query with no terms and no filters.
	ErrEmptyQuery = errors.New("empty query")

	// ErrQueueEmpty indicates a dequeue found no claimable job.
	ErrQueueEmpty = errors.New("queue empty")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation and reranking are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Vector retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates an embedding whose length differs
	// from what the vector store holds for comparison.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrWatcherClosed indicates an operation on a stopped watcher.
	ErrWatcherClosed = errors.New("watcher closed")
)
