// Package sqlite provides SQLite-backed implementations of the
// persistence ports: documents with an FTS5 full-text index, the
// change-detection ledger, the durable priority job queue and the chunk
// vector store, all in a single database file.
package sqlite
