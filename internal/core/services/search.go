package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/logger"
	"github.com/custodia-labs/docsearch/internal/query"
)

// SearchService compiles user queries and executes them against the
// full-text index.
type SearchService struct {
	search      driven.SearchStore
	pageSize    int
	maxSnippets int
}

// SearchOption configures the search service.
type SearchOption func(*SearchService)

// WithPageSize sets the default page size.
func WithPageSize(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithMaxSnippets caps the highlighted snippets per hit.
func WithMaxSnippets(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.maxSnippets = n
		}
	}
}

// NewSearchService creates a search service over the given store.
func NewSearchService(search driven.SearchStore, opts ...SearchOption) *SearchService {
	s := &SearchService{
		search:      search,
		pageSize:    20,
		maxSnippets: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search compiles rawQuery and returns one page of ranked hits with
// highlighted snippets and pagination totals.
func (s *SearchService) Search(ctx context.Context, rawQuery string, page int) (*domain.SearchResponse, error) {
	started := time.Now()

	parsed, err := query.Parse(rawQuery)
	if err != nil {
		return nil, err
	}
	logger.Debug("compiled query: fts=%q type=%q author=%q after=%q before=%q year=%d",
		parsed.FTSQuery, parsed.FileType, parsed.Author, parsed.AfterDate, parsed.BeforeDate, parsed.Year)

	if page < 1 {
		page = 1
	}
	opts := domain.SearchOptions{Page: page, PageSize: s.pageSize}

	total, err := s.search.CountDocuments(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	hits, err := s.search.SearchDocuments(ctx, parsed, opts)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	terms := query.Terms(parsed.FTSQuery)
	for i := range hits {
		hits[i].Snippets = generateSnippets(hits[i].Document.Content, terms, s.maxSnippets)
		// Snippets are for display; the full text stays out of the page.
		hits[i].Document.Content = ""
	}

	return &domain.SearchResponse{
		Hits:     hits,
		Total:    total,
		Page:     page,
		PageSize: s.pageSize,
		TookMS:   time.Since(started).Milliseconds(),
	}, nil
}

// Suggest returns indexed file names completing the given prefix.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.search.SuggestFileNames(ctx, prefix, limit)
}
