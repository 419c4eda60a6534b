package domain

// RetrievalSource names the leg that produced a retrieval result.
type RetrievalSource string

// Retrieval legs.
const (
	RetrievalVector  RetrievalSource = "vector"
	RetrievalLexical RetrievalSource = "lexical"
	RetrievalHybrid  RetrievalSource = "hybrid"
)

// RetrievalResult is a scored chunk returned by the retriever.
type RetrievalResult struct {
	ChunkID    string
	DocumentID int64
	FilePath   string
	FileName   string
	Content    string

	// Score is comparable only within a single retrieval: raw cosine
	// similarity for pure vector retrieval, fused weight for hybrid,
	// rerank score after reranking.
	Score float64

	Source RetrievalSource
}

// Answer is a generated response grounded in retrieved chunks.
type Answer struct {
	// ID uniquely identifies this answer, for logs and transcripts.
	ID string

	Text    string
	Sources []RetrievalResult
}

// RAGState describes whether answer generation is possible.
type RAGState int

// RAG capability states, checked once at startup.
const (
	// RAGNotConfigured means no embedding or LLM provider is set.
	RAGNotConfigured RAGState = iota

	// RAGUnavailable means providers are configured but unreachable.
	RAGUnavailable

	// RAGReady means retrieval and generation are both usable.
	RAGReady
)

// String returns the string representation.
func (s RAGState) String() string {
	switch s {
	case RAGReady:
		return "ready"
	case RAGUnavailable:
		return "unavailable"
	default:
		return "not configured"
	}
}

// VectorStats summarises the vector store contents.
type VectorStats struct {
	TotalChunks    int
	TotalDocuments int
}
