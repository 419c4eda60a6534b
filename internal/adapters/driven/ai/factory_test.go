package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsearch/internal/config"
	"github.com/custodia-labs/docsearch/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	t.Run("none yields nil", func(t *testing.T) {
		svc, err := CreateEmbeddingService(config.RAGConfig{EmbeddingProvider: "none"})
		require.NoError(t, err)
		assert.Nil(t, svc)

		svc, err = CreateEmbeddingService(config.RAGConfig{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("ollama", func(t *testing.T) {
		svc, err := CreateEmbeddingService(config.RAGConfig{
			EmbeddingProvider: "ollama",
			EmbeddingModel:    "nomic-embed-text",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.Equal(t, "nomic-embed-text", svc.ModelName())
	})

	t.Run("openai needs a key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := CreateEmbeddingService(config.RAGConfig{EmbeddingProvider: "openai"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("openai key from environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		svc, err := CreateEmbeddingService(config.RAGConfig{EmbeddingProvider: "openai"})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := CreateEmbeddingService(config.RAGConfig{EmbeddingProvider: "acme"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestCreateLLMService(t *testing.T) {
	t.Run("none yields nil", func(t *testing.T) {
		svc, err := CreateLLMService(config.RAGConfig{LLMProvider: "none"})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("ollama", func(t *testing.T) {
		svc, err := CreateLLMService(config.RAGConfig{
			LLMProvider: "ollama",
			LLMModel:    "llama3.2",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.Equal(t, "llama3.2", svc.ModelName())
	})

	t.Run("anthropic needs a key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		_, err := CreateLLMService(config.RAGConfig{LLMProvider: "anthropic"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("anthropic with configured key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		svc, err := CreateLLMService(config.RAGConfig{
			LLMProvider: "anthropic",
			APIKey:      "configured-key",
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := CreateLLMService(config.RAGConfig{LLMProvider: "acme"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
