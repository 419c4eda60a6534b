package extractors

import (
	"context"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// Ensure HTML implements the interface.
var _ driven.Extractor = (*HTML)(nil)

// HTML extracts HTML documents by stripping markup, using the <title>
// element and <meta name="author"> when present.
type HTML struct{}

// NewHTML creates an HTML extractor.
func NewHTML() *HTML {
	return &HTML{}
}

// Name identifies the extractor in logs.
func (e *HTML) Name() string {
	return "html"
}

// Extensions returns the handled file extensions.
func (e *HTML) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Pre-compiled regular expressions for HTML stripping.
var (
	titleTag   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	authorMeta = regexp.MustCompile(`(?is)<meta\s+name=["']author["']\s+content=["']([^"']*)["']`)
	scriptTag  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	blockEnd   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|section|article|blockquote)>|<br[^>]*>`)
	anyTag     = regexp.MustCompile(`(?s)<[^>]+>`)
	multiBlank = regexp.MustCompile(`\n{3,}`)
	lineSpace  = regexp.MustCompile(`[ \t]+`)
)

// Extract reads the file and strips tags, keeping block boundaries as
// newlines so paragraph chunking still has structure to work with.
func (e *HTML) Extract(_ context.Context, filePath string) (*driven.ExtractedText, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	raw := sanitiseText(data)

	title := titleFromPath(filePath)
	if m := titleTag.FindStringSubmatch(raw); m != nil {
		if t := strings.TrimSpace(html.UnescapeString(m[1])); t != "" {
			title = t
		}
	}

	var author string
	if m := authorMeta.FindStringSubmatch(raw); m != nil {
		author = strings.TrimSpace(html.UnescapeString(m[1]))
	}

	content := stripMarkup(raw)

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	content = strings.TrimSpace(strings.Join(lines, "\n"))

	return &driven.ExtractedText{
		Title:   title,
		Content: content,
		Author:  author,
	}, nil
}
