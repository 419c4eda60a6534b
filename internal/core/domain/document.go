package domain

import "time"

// Document represents an indexed file with its extracted text and metadata.
// It is the canonical representation after extraction, keyed by file path.
type Document struct {
	// ID is the storage-assigned identifier.
	ID int64

	// FilePath is the absolute path of the source file. Unique per document.
	FilePath string

	// FileName is the base name of the source file.
	FileName string

	// FileType is the lowercase file extension without the leading dot.
	FileType string

	// Title is the human-readable title, usually derived from the filename.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Author is the document author when the extractor can determine one.
	Author string

	// FileSize is the size of the source file in bytes.
	FileSize int64

	// FileModifiedAt is the filesystem mtime of the source file.
	FileModifiedAt time.Time

	// CreatedDate and ModifiedDate are the document's own metadata
	// dates when the format records them (docx core properties, email
	// Date headers), falling back to the filesystem mtime.
	CreatedDate  time.Time
	ModifiedDate time.Time

	// PageCount is the page count when the format records one, else 0.
	PageCount int

	// ExtractionMethod names the extractor that produced the content.
	ExtractionMethod string

	// DetectedDates holds dates mined from the document text, in
	// YYYY-MM-DD form, sorted and deduplicated.
	DetectedDates []string

	// IndexedAt is when the document was first indexed.
	IndexedAt time.Time

	// UpdatedAt is when the document was last re-extracted.
	UpdatedAt time.Time
}

// Chunk represents a contiguous span of a document prepared for embedding.
type Chunk struct {
	// ID is deterministic: "{documentID}_{index}".
	ID string

	// DocumentID links to the parent Document.
	DocumentID int64

	// Index is the ordinal position within the document.
	Index int

	// Content is the text content of this chunk.
	Content string

	// StartOffset and EndOffset are character offsets into the
	// document content. EndOffset is exclusive.
	StartOffset int
	EndOffset   int
}

// VectorRecord pairs a chunk with its embedding and the metadata needed
// to present a retrieval hit without loading the parent document.
type VectorRecord struct {
	Chunk Chunk

	// Embedding is the vector representation of the chunk content.
	Embedding []float32

	// FilePath and FileName duplicate parent document fields so hits
	// can be rendered from the vector store alone.
	FilePath string
	FileName string
}

// DocumentStats summarises the document corpus.
type DocumentStats struct {
	TotalDocuments int
	ByFileType     map[string]int
}
