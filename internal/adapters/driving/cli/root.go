// Package cli wires the application together and exposes it as a
// cobra command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch/internal/adapters/driven/ai"
	"github.com/custodia-labs/docsearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsearch/internal/chunker"
	"github.com/custodia-labs/docsearch/internal/config"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/core/services"
	"github.com/custodia-labs/docsearch/internal/extractors"
	"github.com/custodia-labs/docsearch/internal/logger"
)

var (
	configDir string
	verbose   bool
)

// Services shared across commands, built in initServices.
var (
	cfg      *config.Config
	store    *sqlite.Store
	registry driven.ExtractorRegistry
	embedder driven.EmbeddingService
	llm      driven.LLMService

	indexService  *services.IndexService
	searchService *services.SearchService
	ragService    *services.RAGService
)

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Index local documents and search them",
	Long: `docsearch watches local folders, indexes the documents in them, and
answers queries with full-text search, hybrid retrieval, or generated
answers grounded in your files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.docsearch)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree and releases resources afterwards.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices loads configuration, opens storage and builds the
// service graph. Provider failures degrade the AI capability instead
// of aborting; search and indexing always come up.
func initServices(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err = sqlite.NewStore(cfg.General.DataDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	registry = extractors.DefaultRegistry()

	embedder, err = ai.CreateEmbeddingService(cfg.RAG)
	if err != nil {
		logger.Warn("%v", err)
	}
	llm, err = ai.CreateLLMService(cfg.RAG)
	if err != nil {
		logger.Warn("%v", err)
	}

	retrieverOpts := []services.RetrieverOption{
		services.WithTopK(cfg.RAG.TopK),
		services.WithRerankTopK(cfg.RAG.RerankTopK),
		services.WithHybrid(cfg.RAG.Hybrid),
		services.WithFusionWeights(cfg.RAG.VectorWeight, cfg.RAG.LexicalWeight),
	}
	if cfg.RAG.Rerank {
		retrieverOpts = append(retrieverOpts, services.WithReranker(services.NewLLMReranker(llm)))
	}
	retriever := services.NewRetriever(store.VectorStore(), embedder, store.SearchStore(), retrieverOpts...)

	chunks := chunker.New(
		chunker.WithChunkTokens(cfg.RAG.ChunkTokens),
		chunker.WithOverlapTokens(cfg.RAG.OverlapTokens),
	)
	ragService = services.NewRAGService(chunks, embedder, store.VectorStore(), llm, retriever,
		services.WithMaxContextTokens(cfg.RAG.MaxContextToken))
	ragService.CheckCapability(cmd.Context())

	searchService = services.NewSearchService(store.SearchStore(),
		services.WithPageSize(cfg.Search.PageSize),
		services.WithMaxSnippets(cfg.Search.MaxSnippets))

	indexService = services.NewIndexService(
		store.DocumentStore(), store.FileChangeStore(), store.JobStore(), registry,
		services.WithMaxFileSize(cfg.MaxFileSizeBytes()),
		services.WithReindexWorkers(cfg.Indexer.Workers),
		services.WithIgnorePatterns(cfg.Watcher.IgnorePatterns),
		services.WithRAG(ragService),
	)
	return nil
}

func closeServices() {
	if embedder != nil {
		embedder.Close()
	}
	if llm != nil {
		llm.Close()
	}
	if store != nil {
		store.Close()
	}
}
