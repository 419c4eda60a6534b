package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Watcher.DebounceMS)
	assert.Equal(t, 3, cfg.Indexer.Workers)
	assert.Equal(t, 500, cfg.Indexer.MaxFileSizeMB)
	assert.Equal(t, "none", cfg.RAG.EmbeddingProvider)
	assert.Equal(t, 0.7, cfg.RAG.VectorWeight)
	assert.Equal(t, dir, cfg.General.DataDir)
	assert.Contains(t, cfg.Watcher.IgnorePatterns, ".git")
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
[general]
watched_folders = ["/data/docs"]

[watcher]
debounce_ms = 250

[indexer]
workers = 8

[rag]
embedding_provider = "ollama"
hybrid = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/docs"}, cfg.General.WatchedFolders)
	assert.Equal(t, 250, cfg.Watcher.DebounceMS)
	assert.Equal(t, 8, cfg.Indexer.Workers)
	assert.Equal(t, "ollama", cfg.RAG.EmbeddingProvider)
	assert.False(t, cfg.RAG.Hybrid)

	// Untouched sections keep their defaults.
	assert.Equal(t, 3, cfg.Indexer.MaxAttempts)
	assert.Equal(t, 20, cfg.Search.PageSize)
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.General.WatchedFolders = []string{"/tmp/a", "/tmp/b"}
	cfg.Indexer.Workers = 5
	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/a", "/tmp/b"}, loaded.General.WatchedFolders)
	assert.Equal(t, 5, loaded.Indexer.Workers)
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.General.DataDir = "/var/lib/docsearch"
	assert.Equal(t, filepath.Join("/var/lib/docsearch", "docsearch.db"), cfg.DatabasePath())
}

func TestMaxFileSizeBytes(t *testing.T) {
	cfg := Default()
	cfg.Indexer.MaxFileSizeMB = 2
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSizeBytes())
}
