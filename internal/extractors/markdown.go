package extractors

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// Ensure Markdown implements the interface.
var _ driven.Extractor = (*Markdown)(nil)

// Markdown extracts markdown files, using the first heading as the
// title and stripping link and formatting syntax from the content.
type Markdown struct{}

// NewMarkdown creates a markdown extractor.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Name identifies the extractor in logs.
func (e *Markdown) Name() string {
	return "markdown"
}

// Extensions returns the handled file extensions.
func (e *Markdown) Extensions() []string {
	return []string{".md", ".markdown"}
}

var (
	mdHeading   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdImage     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdCodeFence = regexp.MustCompile("(?m)^```[^\n]*$")
	mdEmphasis  = regexp.MustCompile(`(\*\*|__|\*|_|~~)`)
	firstTitle  = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// Extract reads the file and strips markdown syntax. The raw text of
// code blocks is kept; only the fences are removed.
func (e *Markdown) Extract(_ context.Context, filePath string) (*driven.ExtractedText, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	raw := sanitiseText(data)

	title := titleFromPath(filePath)
	if m := firstTitle.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(m[1])
	}

	content := raw
	content = mdImage.ReplaceAllString(content, "$1")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdCodeFence.ReplaceAllString(content, "")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdEmphasis.ReplaceAllString(content, "")

	return &driven.ExtractedText{
		Title:   title,
		Content: strings.TrimSpace(content),
	}, nil
}
