// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: document persistence
//   - FileChangeStore: change-detection ledger persistence
//   - JobStore: durable priority job queue
//   - SearchStore: full-text search over documents (SQLite FTS5)
//   - Extractor / ExtractorRegistry: file text extraction
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: generates vector embeddings. Without it, vector
//     retrieval and answer generation are disabled.
//   - VectorStore: chunk embedding storage and similarity search.
//   - LLMService: language model operations. Without it, answer
//     generation and reranking are disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
