// Package extractors provides file text extraction and the registry
// that selects an extractor by file extension.
package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry creates a registry with the given extractors. Later
// extractors win extension conflicts.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// DefaultRegistry returns a registry with all built-in extractors.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewText(),
		NewMarkdown(),
		NewHTML(),
		NewDocx(),
		NewEml(),
	)
}

// ExtractorFor returns the extractor for the path's extension.
func (r *Registry) ExtractorFor(filePath string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}
	return e, nil
}

// CanExtract reports whether any extractor handles the path.
func (r *Registry) CanExtract(filePath string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filePath))]
	return ok
}

// SupportedExtensions returns all handled extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// titleFromPath derives a document title from the file name stem.
func titleFromPath(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
