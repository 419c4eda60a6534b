package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// ==================== Search Store ====================

// searchStore implements driven.SearchStore over the FTS5 index.
type searchStore struct {
	store *Store
}

var _ driven.SearchStore = (*searchStore)(nil)

// SearchDocuments returns one page of ranked matches. bm25() reports
// lower-is-better negative scores; they are negated here so every
// consumer sees higher-is-better and nobody re-inverts downstream.
func (s *searchStore) SearchDocuments(ctx context.Context, query domain.ParsedQuery, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	if query.IsEmpty() {
		return nil, domain.ErrEmptyQuery
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	where, args := filterConditions(query)

	var sqlQuery string
	if query.FTSQuery != "" {
		sqlQuery = `
			SELECT d.id, d.file_path, d.file_name, d.file_type, d.title,
				d.content, d.author, d.file_size, d.file_modified_at,
				d.created_date, d.modified_date, d.page_count,
				d.extraction_method, d.detected_dates, d.indexed_at,
				d.updated_at, -bm25(documents_fts) AS score
			FROM documents_fts
			JOIN documents d ON d.id = documents_fts.rowid
			WHERE documents_fts MATCH ?` + where + `
			ORDER BY bm25(documents_fts) ASC
			LIMIT ? OFFSET ?`
		args = append([]any{query.FTSQuery}, args...)
	} else {
		// Filters-only query: no relevance signal, newest first.
		sqlQuery = `
			SELECT d.id, d.file_path, d.file_name, d.file_type, d.title,
				d.content, d.author, d.file_size, d.file_modified_at,
				d.created_date, d.modified_date, d.page_count,
				d.extraction_method, d.detected_dates, d.indexed_at,
				d.updated_at, 0.0 AS score
			FROM documents d
			WHERE 1=1` + where + `
			ORDER BY d.file_modified_at DESC
			LIMIT ? OFFSET ?`
	}
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var hits []domain.SearchHit
	for rows.Next() {
		var hit domain.SearchHit
		doc, err := scanDocumentWithScore(rows.Scan, &hit.Score)
		if err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		hit.Document = *doc
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// CountDocuments returns the total matches for pagination.
func (s *searchStore) CountDocuments(ctx context.Context, query domain.ParsedQuery) (int, error) {
	if query.IsEmpty() {
		return 0, domain.ErrEmptyQuery
	}

	where, args := filterConditions(query)

	var sqlQuery string
	if query.FTSQuery != "" {
		sqlQuery = `
			SELECT COUNT(*)
			FROM documents_fts
			JOIN documents d ON d.id = documents_fts.rowid
			WHERE documents_fts MATCH ?` + where
		args = append([]any{query.FTSQuery}, args...)
	} else {
		sqlQuery = "SELECT COUNT(*) FROM documents d WHERE 1=1" + where
	}

	var count int
	if err := s.store.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting matches: %w", err)
	}
	return count, nil
}

// SuggestFileNames returns indexed file names with the given prefix.
func (s *searchStore) SuggestFileNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	if prefix == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT file_name FROM documents
		WHERE file_name LIKE ? || '%'
		ORDER BY file_name
		LIMIT ?
	`, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggesting file names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// filterConditions renders the structured filters of a parsed query as
// AND-ed SQL conditions against the documents table alias "d".
func filterConditions(query domain.ParsedQuery) (string, []any) {
	var conds []string
	var args []any

	if query.FileType != "" {
		conds = append(conds, "d.file_type = ?")
		args = append(args, query.FileType)
	}
	if query.Author != "" {
		conds = append(conds, "LOWER(d.author) LIKE '%' || LOWER(?) || '%'")
		args = append(args, query.Author)
	}
	// Date filters run on the document's own created date; rows indexed
	// before that column existed fall back to the file mtime.
	if query.AfterDate != "" {
		// Created on or after the date, or the text mentions a date on
		// or after it. Detected dates are YYYY-MM-DD, so string order
		// is date order.
		conds = append(conds, `(date(COALESCE(d.created_date, d.file_modified_at)) >= date(?)
			OR EXISTS (SELECT 1 FROM json_each(d.detected_dates) WHERE json_each.value >= ?))`)
		args = append(args, query.AfterDate, query.AfterDate)
	}
	if query.BeforeDate != "" {
		conds = append(conds, "date(COALESCE(d.created_date, d.file_modified_at)) <= date(?)")
		args = append(args, query.BeforeDate)
	}
	if query.Year != 0 {
		// Created in the year, or the text mentions a date in it.
		conds = append(conds, "(date(COALESCE(d.created_date, d.file_modified_at)) BETWEEN date(?) AND date(?) OR d.detected_dates LIKE ?)")
		args = append(args,
			fmt.Sprintf("%04d-01-01", query.Year),
			fmt.Sprintf("%04d-12-31", query.Year),
			fmt.Sprintf(`%%"%04d-%%`, query.Year))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conds, " AND "), args
}

// scanDocumentWithScore scans a document row that carries a trailing
// score column.
func scanDocumentWithScore(scan func(...any) error, score *float64) (*domain.Document, error) {
	return scanDocument(func(dest ...any) error {
		return scan(append(dest, score)...)
	})
}
