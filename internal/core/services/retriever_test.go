package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

func vecResult(chunkID string, docID int64, score float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		ChunkID:    chunkID,
		DocumentID: docID,
		FilePath:   "/docs/file.txt",
		FileName:   "file.txt",
		Content:    "chunk content",
		Score:      score,
		Source:     domain.RetrievalVector,
	}
}

func TestRetrieveVectorOnly(t *testing.T) {
	vec := newFakeVectorStore()
	vec.results = []domain.RetrievalResult{
		vecResult("1_0", 1, 0.9),
		vecResult("1_1", 1, 0.7),
		vecResult("2_0", 2, 0.4),
	}
	r := NewRetriever(vec, &fakeEmbedder{}, nil, WithHybrid(false), WithTopK(2))

	results, err := r.Retrieve(context.Background(), "question", "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1_0", results[0].ChunkID)
	assert.Equal(t, "1_1", results[1].ChunkID)
}

func TestRetrieveHybridFusion(t *testing.T) {
	vec := newFakeVectorStore()
	vec.results = []domain.RetrievalResult{
		vecResult("1_0", 1, 0.8),
		vecResult("2_0", 2, 0.4),
	}
	search := &fakeSearchStore{
		hits: []domain.SearchHit{
			// Document 2 also wins the lexical leg, so its pseudo-chunk
			// competes with the vector chunks under the doc_ id.
			{Document: domain.Document{ID: 2, FileName: "two.txt", Content: "exact phrase match"}, Score: 3.0},
		},
	}
	r := NewRetriever(vec, &fakeEmbedder{}, search, WithTopK(5))

	results, err := r.Retrieve(context.Background(), "phrase", "")
	require.NoError(t, err)
	require.Len(t, results, 3)

	// The vector leader is max-normalised to the full vector weight.
	assert.Equal(t, "1_0", results[0].ChunkID)
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)

	byID := make(map[string]domain.RetrievalResult)
	for _, res := range results {
		byID[res.ChunkID] = res
	}
	lex, ok := byID["doc_2"]
	require.True(t, ok, "lexical hits appear under doc_ pseudo-chunk ids")
	assert.Equal(t, domain.RetrievalLexical, lex.Source)
	assert.InDelta(t, 0.3, lex.Score, 1e-9, "lexical leader carries the full lexical weight")
}

func TestRetrieveHybridCollisionMarksHybrid(t *testing.T) {
	vec := newFakeVectorStore()
	vec.results = []domain.RetrievalResult{
		{ChunkID: "doc_7", DocumentID: 7, Score: 0.5, Source: domain.RetrievalVector},
	}
	search := &fakeSearchStore{
		hits: []domain.SearchHit{
			{Document: domain.Document{ID: 7, FileName: "seven.txt", Content: "seven"}, Score: 1.0},
		},
	}
	r := NewRetriever(vec, &fakeEmbedder{}, search, WithTopK(5))

	results, err := r.Retrieve(context.Background(), "seven", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.RetrievalHybrid, results[0].Source)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9, "both legs contribute their full weight")
}

func TestRetrieveDegradesToLexical(t *testing.T) {
	vec := newFakeVectorStore()
	vec.searchErr = errFakeBoom
	search := &fakeSearchStore{
		hits: []domain.SearchHit{
			{Document: domain.Document{ID: 3, FileName: "three.txt", Content: "fallback text"}, Score: 2.0},
		},
	}
	r := NewRetriever(vec, &fakeEmbedder{}, search)

	results, err := r.Retrieve(context.Background(), "fallback", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc_3", results[0].ChunkID)
	assert.InDelta(t, 0.2, results[0].Score, 1e-9, "lexical score is rescaled")
}

func TestRetrieveFilePathFilter(t *testing.T) {
	vec := newFakeVectorStore()
	vec.results = []domain.RetrievalResult{
		{ChunkID: "1_0", DocumentID: 1, FilePath: "/docs/report.txt", Score: 0.9, Source: domain.RetrievalVector},
	}
	search := &fakeSearchStore{
		hits: []domain.SearchHit{
			{Document: domain.Document{ID: 1, FilePath: "/docs/report.txt", FileName: "report.txt", Content: "report text"}, Score: 2.0},
			{Document: domain.Document{ID: 2, FilePath: "/docs/other.txt", FileName: "other.txt", Content: "other text"}, Score: 3.0},
		},
	}
	r := NewRetriever(vec, &fakeEmbedder{}, search, WithTopK(5))

	results, err := r.Retrieve(context.Background(), "report", "/docs/report.txt")
	require.NoError(t, err)

	assert.Equal(t, "/docs/report.txt", vec.lastFilter, "filter reaches the vector store")
	for _, res := range results {
		assert.Equal(t, "/docs/report.txt", res.FilePath, "lexical hits outside the file are dropped")
	}
}

func TestRetrieveFailsWhenBothLegsEmpty(t *testing.T) {
	vec := newFakeVectorStore()
	vec.searchErr = errFakeBoom
	r := NewRetriever(vec, &fakeEmbedder{}, nil, WithHybrid(false))

	_, err := r.Retrieve(context.Background(), "question", "")
	assert.ErrorIs(t, err, errFakeBoom)
}

func TestRetrieveWithoutEmbedder(t *testing.T) {
	r := NewRetriever(newFakeVectorStore(), nil, nil, WithHybrid(false))

	_, err := r.Retrieve(context.Background(), "question", "")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrieveReranks(t *testing.T) {
	vec := newFakeVectorStore()
	vec.results = []domain.RetrievalResult{
		vecResult("1_0", 1, 0.9),
		vecResult("1_1", 1, 0.8),
		vecResult("1_2", 1, 0.7),
	}
	rr := &fakeReranker{available: true}
	r := NewRetriever(vec, &fakeEmbedder{}, nil,
		WithHybrid(false), WithTopK(2), WithRerankTopK(3), WithReranker(rr))

	results, err := r.Retrieve(context.Background(), "question", "")
	require.NoError(t, err)
	assert.Equal(t, 1, rr.calls)
	require.Len(t, results, 2)
	// The fake reranker reverses, proving its ordering is honoured.
	assert.Equal(t, "1_2", results[0].ChunkID)
}

func TestRetrieveSurvivesRerankerFailure(t *testing.T) {
	vec := newFakeVectorStore()
	vec.results = []domain.RetrievalResult{
		vecResult("1_0", 1, 0.9),
		vecResult("1_1", 1, 0.8),
		vecResult("1_2", 1, 0.7),
	}
	rr := &fakeReranker{available: true, err: errFakeBoom}
	r := NewRetriever(vec, &fakeEmbedder{}, nil,
		WithHybrid(false), WithTopK(2), WithRerankTopK(3), WithReranker(rr))

	results, err := r.Retrieve(context.Background(), "question", "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1_0", results[0].ChunkID, "fused order survives a rerank failure")
}
