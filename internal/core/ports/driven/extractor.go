package driven

import (
	"context"
	"time"
)

// ExtractedText is the result of pulling text out of a file.
type ExtractedText struct {
	// Title is a human-readable title, usually the file stem.
	Title string

	// Content is the extracted plain text.
	Content string

	// Author is the document author when the format records one.
	Author string

	// CreatedAt and ModifiedAt are the document's own metadata dates.
	// Zero when the format does not record them.
	CreatedAt  time.Time
	ModifiedAt time.Time

	// PageCount is the page count when the format records one, else 0.
	PageCount int
}

// Extractor pulls plain text from files of specific formats.
type Extractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// Extensions returns the lowercase dotted extensions handled,
	// e.g. ".txt", ".md".
	Extensions() []string

	// Extract reads the file and returns its text content.
	Extract(ctx context.Context, filePath string) (*ExtractedText, error)
}

// ExtractorRegistry selects the extractor for a file path.
type ExtractorRegistry interface {
	// ExtractorFor returns the extractor for the path's extension.
	// Returns domain.ErrUnsupportedType when no extractor handles it.
	ExtractorFor(filePath string) (Extractor, error)

	// CanExtract reports whether any extractor handles the path.
	CanExtract(filePath string) bool

	// SupportedExtensions returns all handled dotted extensions.
	SupportedExtensions() []string
}
