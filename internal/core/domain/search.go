package domain

// ParsedQuery is the structured form of a user query after compilation.
// Free text and filename:/content: fields become the full-text query;
// the remaining fields become SQL filter predicates.
type ParsedQuery struct {
	// FTSQuery is the text handed to the full-text index. Empty when
	// the query was filters-only.
	FTSQuery string

	// FileType filters on the lowercase extension, without a dot.
	FileType string

	// Author filters on a case-insensitive substring of the author.
	Author string

	// AfterDate and BeforeDate bound the file modification time,
	// inclusive, in YYYY-MM-DD form.
	AfterDate  string
	BeforeDate string

	// Year matches documents modified in the year or whose text
	// mentions a date in that year. Zero means unset.
	Year int
}

// HasFilters returns true if any structured filter is set.
func (q ParsedQuery) HasFilters() bool {
	return q.FileType != "" || q.Author != "" || q.AfterDate != "" ||
		q.BeforeDate != "" || q.Year != 0
}

// IsEmpty returns true if the query has neither text nor filters.
func (q ParsedQuery) IsEmpty() bool {
	return q.FTSQuery == "" && !q.HasFilters()
}

// SearchOptions configures a lexical search.
type SearchOptions struct {
	// Page is 1-based.
	Page     int
	PageSize int
}

// SearchHit is a single ranked lexical result.
type SearchHit struct {
	Document Document

	// Score is the relevance score, higher is better.
	Score float64

	// Snippets are short highlighted extracts around matched terms.
	Snippets []string
}

// SearchResponse is a page of lexical results with pagination totals.
type SearchResponse struct {
	Hits     []SearchHit
	Total    int
	Page     int
	PageSize int
	TookMS   int64
}
