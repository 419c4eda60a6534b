package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoredPath(t *testing.T) {
	patterns := []string{".*", "*~", "*.tmp", "node_modules", "__pycache__"}

	t.Run("file name match", func(t *testing.T) {
		assert.True(t, IgnoredPath("/docs/draft.tmp", patterns))
		assert.True(t, IgnoredPath("/docs/notes.txt~", patterns))
		assert.True(t, IgnoredPath("/docs/.env", patterns))
	})

	t.Run("ancestor directory match", func(t *testing.T) {
		assert.True(t, IgnoredPath("/proj/node_modules/pkg/readme.txt", patterns))
		assert.True(t, IgnoredPath("/proj/.git/config", patterns))
		assert.True(t, IgnoredPath("/proj/src/__pycache__/mod.txt", patterns))
	})

	t.Run("clean path passes", func(t *testing.T) {
		assert.False(t, IgnoredPath("/docs/report.txt", patterns))
		assert.False(t, IgnoredPath("/proj/modules/readme.md", patterns))
	})

	t.Run("no patterns means nothing is ignored", func(t *testing.T) {
		assert.False(t, IgnoredPath("/proj/node_modules/pkg/readme.txt", nil))
	})
}
