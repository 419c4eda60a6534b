package indexer

import (
	"path/filepath"
	"strings"
)

// IgnoredPath reports whether the path's name or any ancestor
// directory name matches one of the glob patterns. The watcher and the
// bulk reindex walk share this check so a file is filtered the same
// way no matter how it enters the index.
func IgnoredPath(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" {
			continue
		}
		for _, pattern := range patterns {
			if ok, err := filepath.Match(pattern, part); err == nil && ok {
				return true
			}
		}
	}
	return false
}
