package extractors

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// Ensure Text implements the interface.
var _ driven.Extractor = (*Text)(nil)

// Text extracts plain text file formats verbatim.
type Text struct{}

// NewText creates a plain text extractor.
func NewText() *Text {
	return &Text{}
}

// Name identifies the extractor in logs.
func (e *Text) Name() string {
	return "text"
}

// Extensions returns the handled file extensions.
func (e *Text) Extensions() []string {
	return []string{".txt", ".log", ".csv", ".json", ".yaml", ".yml", ".toml"}
}

// Extract reads the file as UTF-8 text.
func (e *Text) Extract(_ context.Context, filePath string) (*driven.ExtractedText, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}

	return &driven.ExtractedText{
		Title:   titleFromPath(filePath),
		Content: sanitiseText(data),
	}, nil
}

// sanitiseText normalises line endings and replaces invalid UTF-8
// sequences so downstream chunking and storage see clean text.
func sanitiseText(data []byte) string {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if utf8.Valid(data) {
		return string(data)
	}
	return string(bytes.ToValidUTF8(data, []byte("�")))
}
