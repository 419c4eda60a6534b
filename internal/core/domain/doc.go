// Package domain holds the core business entities and errors for the
// document indexing and retrieval engine. It has no dependencies on
// adapters or infrastructure.
package domain
