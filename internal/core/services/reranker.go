package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/logger"
)

const rerankPrompt = `Score how relevant each passage is to the query on a scale from 0.0
(irrelevant) to 1.0 (directly answers it).

Query: %s

%s

Reply with only a JSON array of scores in passage order, e.g. [0.9, 0.2, 0.7].`

// rerankPassageChars caps how much of each candidate the scoring
// prompt carries.
const rerankPassageChars = 500

var scoreArrayPattern = regexp.MustCompile(`\[[\d\s,.]+\]`)
var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// LLMReranker scores retrieval candidates with a single batched prompt
// to the language model. It never fails a retrieval: when the model or
// its output is unusable, candidates keep a deterministic fallback
// order.
type LLMReranker struct {
	llm driven.LLMService
}

// NewLLMReranker creates a reranker over the given model. A nil model
// yields a reranker that reports itself unavailable.
func NewLLMReranker(llm driven.LLMService) *LLMReranker {
	return &LLMReranker{llm: llm}
}

// Available reports whether the model can be asked to score.
func (r *LLMReranker) Available(ctx context.Context) bool {
	return r.llm != nil
}

// Rerank scores the candidates against the query and returns the topK
// best, descending. Scoring failures fall back to the incoming order
// with uniformly decreasing scores.
func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []domain.RetrievalResult, topK int) ([]domain.RetrievalResult, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}

	scores := r.score(ctx, query, candidates)

	ranked := make([]domain.RetrievalResult, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].Score = scores[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked[:topK], nil
}

// score returns one score per candidate, falling back to uniformly
// decreasing scores that preserve the incoming order.
func (r *LLMReranker) score(ctx context.Context, query string, candidates []domain.RetrievalResult) []float64 {
	if r.llm != nil {
		if scores, ok := r.askModel(ctx, query, candidates); ok {
			return scores
		}
	}
	scores := make([]float64, len(candidates))
	for i := range scores {
		scores[i] = 1.0 - float64(i)*0.05
		if scores[i] < 0 {
			scores[i] = 0
		}
	}
	return scores
}

func (r *LLMReranker) askModel(ctx context.Context, query string, candidates []domain.RetrievalResult) ([]float64, bool) {
	var b strings.Builder
	for i, c := range candidates {
		passage := c.Content
		if len(passage) > rerankPassageChars {
			passage = passage[:rerankPassageChars]
		}
		fmt.Fprintf(&b, "Passage %d:\n%s\n\n", i+1, passage)
	}

	reply, err := r.llm.Generate(ctx, fmt.Sprintf(rerankPrompt, query, b.String()), driven.GenerateOptions{
		MaxTokens: 256,
	})
	if err != nil {
		logger.Warn("rerank scoring: %v", err)
		return nil, false
	}

	scores, ok := parseScores(reply, len(candidates))
	if !ok {
		logger.Debug("unusable rerank reply: %q", reply)
	}
	return scores, ok
}

// parseScores reads the model's score list. It prefers a JSON array
// and falls back to collecting bare numbers from the reply; either way
// the count must match the candidate count.
func parseScores(reply string, want int) ([]float64, bool) {
	var raw []string
	if arr := scoreArrayPattern.FindString(reply); arr != "" {
		raw = numberPattern.FindAllString(arr, -1)
	} else {
		raw = numberPattern.FindAllString(reply, -1)
	}
	if len(raw) != want {
		return nil, false
	}

	scores := make([]float64, want)
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		scores[i] = v
	}
	return scores, true
}
