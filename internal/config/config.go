// Package config loads the application configuration from a TOML file,
// applying defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultDirName is the configuration directory under the user's home.
const DefaultDirName = ".docsearch"

// Config is the full application configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Watcher WatcherConfig `toml:"watcher"`
	Indexer IndexerConfig `toml:"indexer"`
	Search  SearchConfig  `toml:"search"`
	RAG     RAGConfig     `toml:"rag"`
}

// GeneralConfig covers paths shared across components.
type GeneralConfig struct {
	// DataDir holds the SQLite database. Empty means the config dir.
	DataDir string `toml:"data_dir"`

	// WatchedFolders are the roots to index and watch.
	WatchedFolders []string `toml:"watched_folders"`
}

// WatcherConfig tunes filesystem event handling.
type WatcherConfig struct {
	// DebounceMS is how long a path must stay quiet before its
	// coalesced event is released.
	DebounceMS int `toml:"debounce_ms"`

	// IgnorePatterns are glob patterns matched against a file's name
	// and each ancestor directory name.
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// IndexerConfig tunes extraction and the worker pool.
type IndexerConfig struct {
	Workers       int `toml:"workers"`
	MaxFileSizeMB int `toml:"max_file_size_mb"`
	MaxAttempts   int `toml:"max_attempts"`
}

// SearchConfig tunes lexical search output.
type SearchConfig struct {
	PageSize    int `toml:"page_size"`
	MaxSnippets int `toml:"max_snippets"`
}

// RAGConfig configures retrieval and answer generation. Providers left
// as "none" disable the capability.
type RAGConfig struct {
	EmbeddingProvider string `toml:"embedding_provider"`
	EmbeddingModel    string `toml:"embedding_model"`
	LLMProvider       string `toml:"llm_provider"`
	LLMModel          string `toml:"llm_model"`

	// OllamaURL is shared by Ollama embedding and LLM adapters.
	OllamaURL string `toml:"ollama_url"`

	// APIKey authenticates cloud providers. The environment variables
	// OPENAI_API_KEY and ANTHROPIC_API_KEY take precedence.
	APIKey string `toml:"api_key"`

	ChunkTokens     int     `toml:"chunk_tokens"`
	OverlapTokens   int     `toml:"overlap_tokens"`
	TopK            int     `toml:"top_k"`
	RerankTopK      int     `toml:"rerank_top_k"`
	Hybrid          bool    `toml:"hybrid"`
	Rerank          bool    `toml:"rerank"`
	VectorWeight    float64 `toml:"vector_weight"`
	LexicalWeight   float64 `toml:"lexical_weight"`
	MaxContextToken int     `toml:"max_context_tokens"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Watcher: WatcherConfig{
			DebounceMS: 500,
			IgnorePatterns: []string{
				".*", "*~", "*.tmp", "*.swp", "*.part",
				"node_modules", "__pycache__", ".git",
			},
		},
		Indexer: IndexerConfig{
			Workers:       3,
			MaxFileSizeMB: 500,
			MaxAttempts:   3,
		},
		Search: SearchConfig{
			PageSize:    20,
			MaxSnippets: 3,
		},
		RAG: RAGConfig{
			EmbeddingProvider: "none",
			EmbeddingModel:    "nomic-embed-text",
			LLMProvider:       "none",
			LLMModel:          "llama3.2",
			OllamaURL:         "http://localhost:11434",
			ChunkTokens:       500,
			OverlapTokens:     50,
			TopK:              5,
			RerankTopK:        20,
			Hybrid:            true,
			VectorWeight:      0.7,
			LexicalWeight:     0.3,
			MaxContextToken:   3000,
		},
	}
}

// Load reads the configuration from configDir/config.toml, creating the
// directory on first use. A missing file yields the defaults. Values
// present in the file override defaults field by field.
func Load(configDir string) (*Config, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	cfg := Default()
	cfg.General.DataDir = dir

	path := filepath.Join(dir, "config.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.General.DataDir == "" {
		cfg.General.DataDir = dir
	}
	return cfg, nil
}

// Save writes the configuration to configDir/config.toml.
func Save(configDir string, cfg *Config) error {
	dir, err := resolveDir(configDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DatabasePath returns the SQLite database location for this config.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.General.DataDir, "docsearch.db")
}

// MaxFileSizeBytes converts the configured cap to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Indexer.MaxFileSizeMB) * 1024 * 1024
}

func resolveDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}
