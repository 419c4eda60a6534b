package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

// Fields that pass through to the full-text index as column filters.
var ftsFields = map[string]bool{
	"filename": true,
	"content":  true,
}

var yearOnly = regexp.MustCompile(`^\d{4}$`)
var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse compiles a raw query string into a ParsedQuery. Structured
// filters (type:, author:, after:, before:, year:) are lifted out;
// everything else, including filename: and content: column filters,
// boolean operators and parenthesised groups, is reassembled into the
// full-text query. A field with an unrecognised name or unusable value
// degrades to a plain search word rather than failing.
func Parse(raw string) (domain.ParsedQuery, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ParsedQuery{}, domain.ErrEmptyQuery
	}

	var parsed domain.ParsedQuery
	var fts []string

	for _, tok := range Lex(raw) {
		switch tok.Kind {
		case TokenWord:
			fts = append(fts, quoteTerm(tok.Value))

		case TokenPhrase:
			if tok.Value != "" {
				fts = append(fts, quoteTerm(tok.Value))
			}

		case TokenAnd, TokenOr, TokenNot:
			fts = append(fts, tok.Value)

		case TokenLParen, TokenRParen:
			fts = append(fts, tok.Value)

		case TokenField:
			if ftsFields[tok.Field] {
				fts = append(fts, tok.Field+":"+quoteTerm(tok.Value))
				continue
			}
			if handled := applyFilter(&parsed, tok.Field, tok.Value); !handled {
				// Unknown field names are search text, not errors.
				fts = append(fts, quoteTerm(tok.Field+":"+tok.Value))
			}

		case TokenEOF:
		}
	}

	parsed.FTSQuery = strings.Join(fts, " ")
	if parsed.IsEmpty() {
		return domain.ParsedQuery{}, domain.ErrEmptyQuery
	}
	return parsed, nil
}

// applyFilter sets the structured filter for a recognised field name,
// returning false when the name is unknown or the value is unusable.
func applyFilter(parsed *domain.ParsedQuery, field, value string) bool {
	switch field {
	case "type", "ext":
		parsed.FileType = strings.ToLower(strings.TrimPrefix(value, "."))
		return true

	case "author":
		parsed.Author = value
		return true

	case "after":
		if d := normaliseDate(value); d != "" {
			parsed.AfterDate = d
			return true
		}
		return false

	case "before":
		if d := normaliseDate(value); d != "" {
			parsed.BeforeDate = d
			return true
		}
		return false

	case "year":
		if y, err := strconv.Atoi(value); err == nil && yearOnly.MatchString(value) {
			parsed.Year = y
			return true
		}
		return false

	default:
		return false
	}
}

// normaliseDate accepts YYYY-MM-DD as-is and expands a bare year to the
// first of January. Anything else is rejected.
func normaliseDate(value string) string {
	switch {
	case isoDate.MatchString(value):
		return value
	case yearOnly.MatchString(value):
		return value + "-01-01"
	default:
		return ""
	}
}

// quoteTerm wraps a term in double quotes for FTS5, escaping embedded
// quotes by doubling them. Quoting keeps punctuation inside terms from
// being read as match syntax.
func quoteTerm(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
