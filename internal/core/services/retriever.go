package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/logger"
	"github.com/custodia-labs/docsearch/internal/query"
)

// Retrieval tuning defaults.
const (
	DefaultRetrievalTopK = 5
	DefaultRerankTopK    = 20

	// Default fusion weights for hybrid retrieval. Vector similarity
	// carries most of the signal; the lexical leg rescues exact-term
	// matches the embedding space misses.
	DefaultVectorWeight  = 0.7
	DefaultLexicalWeight = 0.3

	// Lexical bm25 scores are rescaled into the same rough magnitude
	// as cosine similarities before fusion.
	lexicalScoreScale = 10.0
)

// Retriever finds the chunks most relevant to a question. It runs a
// vector leg and, in hybrid mode, a lexical leg in parallel, fuses the
// two rankings, and optionally reranks the fused candidates.
type Retriever struct {
	vectors  driven.VectorStore
	embedder driven.EmbeddingService
	search   driven.SearchStore
	reranker driven.Reranker

	topK          int
	rerankTopK    int
	hybrid        bool
	vectorWeight  float64
	lexicalWeight float64
}

// RetrieverOption configures the retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets how many chunks a retrieval returns.
func WithTopK(n int) RetrieverOption {
	return func(r *Retriever) {
		if n > 0 {
			r.topK = n
		}
	}
}

// WithRerankTopK sets how many fused candidates feed the reranker.
func WithRerankTopK(n int) RetrieverOption {
	return func(r *Retriever) {
		if n > 0 {
			r.rerankTopK = n
		}
	}
}

// WithHybrid toggles the lexical leg.
func WithHybrid(on bool) RetrieverOption {
	return func(r *Retriever) { r.hybrid = on }
}

// WithReranker attaches an optional reranker.
func WithReranker(rr driven.Reranker) RetrieverOption {
	return func(r *Retriever) { r.reranker = rr }
}

// WithFusionWeights sets the leg weights for hybrid fusion.
func WithFusionWeights(vector, lexical float64) RetrieverOption {
	return func(r *Retriever) {
		if vector > 0 && lexical > 0 {
			r.vectorWeight = vector
			r.lexicalWeight = lexical
		}
	}
}

// NewRetriever creates a retriever. The search store may be nil when
// hybrid mode is off; the reranker is optional.
func NewRetriever(vectors driven.VectorStore, embedder driven.EmbeddingService, search driven.SearchStore, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		vectors:       vectors,
		embedder:      embedder,
		search:        search,
		topK:          DefaultRetrievalTopK,
		rerankTopK:    DefaultRerankTopK,
		hybrid:        true,
		vectorWeight:  DefaultVectorWeight,
		lexicalWeight: DefaultLexicalWeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the topK chunks most relevant to the question,
// best first. A non-empty pathFilter restricts both legs to chunks of
// that file. When the embedding leg is unusable the retrieval
// degrades to lexical-only rather than failing.
func (r *Retriever) Retrieve(ctx context.Context, question, pathFilter string) ([]domain.RetrievalResult, error) {
	initialK := r.topK
	reranking := r.reranker != nil && r.reranker.Available(ctx)
	if reranking && r.rerankTopK > initialK {
		initialK = r.rerankTopK
	}

	var (
		wg         sync.WaitGroup
		vecResults []domain.RetrievalResult
		lexResults []domain.RetrievalResult
		vecErr     error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		vecResults, vecErr = r.vectorLeg(ctx, question, initialK, pathFilter)
	}()

	if r.hybrid && r.search != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lexResults = r.lexicalLeg(ctx, question, initialK, pathFilter)
		}()
	}
	wg.Wait()

	if vecErr != nil {
		if len(lexResults) == 0 {
			return nil, vecErr
		}
		logger.Warn("vector retrieval degraded to lexical only: %v", vecErr)
		vecResults = nil
	}

	fused := fuse(vecResults, lexResults, r.vectorWeight, r.lexicalWeight)
	if len(fused) > initialK {
		fused = fused[:initialK]
	}

	if reranking && len(fused) > r.topK {
		reranked, err := r.reranker.Rerank(ctx, question, fused, r.topK)
		if err != nil {
			logger.Warn("reranking skipped: %v", err)
		} else {
			return reranked, nil
		}
	}
	if len(fused) > r.topK {
		fused = fused[:r.topK]
	}
	return fused, nil
}

func (r *Retriever) vectorLeg(ctx context.Context, question string, k int, pathFilter string) ([]domain.RetrievalResult, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	return r.vectors.SearchSimilar(ctx, embedding, k, pathFilter)
}

// lexicalLeg searches whole documents and adapts the hits into
// pseudo-chunk results. Leg failures are logged, not propagated: the
// lexical leg only ever adds signal.
func (r *Retriever) lexicalLeg(ctx context.Context, question string, k int, pathFilter string) []domain.RetrievalResult {
	parsed, err := query.Parse(question)
	if err != nil {
		return nil
	}
	hits, err := r.search.SearchDocuments(ctx, parsed, domain.SearchOptions{Page: 1, PageSize: k})
	if err != nil {
		logger.Warn("lexical retrieval leg: %v", err)
		return nil
	}

	terms := query.Terms(parsed.FTSQuery)
	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		if pathFilter != "" && hit.Document.FilePath != pathFilter {
			continue
		}
		content := hit.Document.Content
		if snips := generateSnippets(content, terms, 1); len(snips) > 0 {
			content = snips[0]
		}
		results = append(results, domain.RetrievalResult{
			ChunkID:    fmt.Sprintf("doc_%d", hit.Document.ID),
			DocumentID: hit.Document.ID,
			FilePath:   hit.Document.FilePath,
			FileName:   hit.Document.FileName,
			Content:    content,
			Score:      hit.Score / lexicalScoreScale,
			Source:     domain.RetrievalLexical,
		})
	}
	return results
}

// fuse merges the two ranked lists with max-normalised weighted
// scores. A chunk present in both legs accumulates both contributions
// and is marked hybrid. The result is sorted best first.
func fuse(vec, lex []domain.RetrievalResult, vectorWeight, lexicalWeight float64) []domain.RetrievalResult {
	if len(lex) == 0 {
		return vec
	}
	if len(vec) == 0 {
		return lex
	}

	byID := make(map[string]*domain.RetrievalResult, len(vec)+len(lex))
	var order []string

	accumulate := func(results []domain.RetrievalResult, weight float64) {
		norm := maxScore(results)
		for _, res := range results {
			res := res
			contribution := 0.0
			if norm > 0 {
				contribution = weight * res.Score / norm
			}
			if existing, ok := byID[res.ChunkID]; ok {
				existing.Score += contribution
				existing.Source = domain.RetrievalHybrid
				continue
			}
			res.Score = contribution
			byID[res.ChunkID] = &res
			order = append(order, res.ChunkID)
		}
	}
	accumulate(vec, vectorWeight)
	accumulate(lex, lexicalWeight)

	fused := make([]domain.RetrievalResult, 0, len(order))
	for _, id := range order {
		fused = append(fused, *byID[id])
	}
	sort.SliceStable(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	return fused
}

func maxScore(results []domain.RetrievalResult) float64 {
	max := 0.0
	for _, res := range results {
		if res.Score > max {
			max = res.Score
		}
	}
	return max
}
