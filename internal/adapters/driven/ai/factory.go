// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"os"

	ollamaembed "github.com/custodia-labs/docsearch/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docsearch/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docsearch/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docsearch/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/docsearch/internal/config"
	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// CreateEmbeddingService builds the configured embedding adapter.
// A "none" provider yields a nil service, disabling vector retrieval.
func CreateEmbeddingService(cfg config.RAGConfig) (driven.EmbeddingService, error) {
	switch domain.AIProvider(cfg.EmbeddingProvider) {
	case domain.AIProviderNone, "":
		return nil, nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.OllamaURL,
			Model:   cfg.EmbeddingModel,
		}), nil

	case domain.AIProviderOpenAI:
		key := apiKey("OPENAI_API_KEY", cfg.APIKey)
		if key == "" {
			return nil, fmt.Errorf("%w: openai embedding provider needs an API key (set OPENAI_API_KEY or rag.api_key)",
				domain.ErrEmbeddingUnavailable)
		}
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: key,
			Model:  cfg.EmbeddingModel,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrEmbeddingUnavailable, cfg.EmbeddingProvider)
	}
}

// CreateLLMService builds the configured language model adapter.
// A "none" provider yields a nil service, disabling answer generation.
func CreateLLMService(cfg config.RAGConfig) (driven.LLMService, error) {
	switch domain.AIProvider(cfg.LLMProvider) {
	case domain.AIProviderNone, "":
		return nil, nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.OllamaURL,
			Model:   cfg.LLMModel,
		}), nil

	case domain.AIProviderAnthropic:
		key := apiKey("ANTHROPIC_API_KEY", cfg.APIKey)
		if key == "" {
			return nil, fmt.Errorf("%w: anthropic provider needs an API key (set ANTHROPIC_API_KEY or rag.api_key)",
				domain.ErrLLMUnavailable)
		}
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey: key,
			Model:  cfg.LLMModel,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q",
			domain.ErrLLMUnavailable, cfg.LLMProvider)
	}
}

// apiKey prefers the environment variable over the configured value,
// so keys can stay out of the config file.
func apiKey(envVar, configured string) string {
	if key := os.Getenv(envVar); key != "" {
		return key
	}
	return configured
}
