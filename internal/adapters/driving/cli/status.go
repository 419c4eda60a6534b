package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

var statusClearCompleted bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index, queue and AI capability status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusClearCompleted, "clear-completed", false, "remove completed jobs from the queue")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if statusClearCompleted {
		n, err := store.JobStore().ClearCompleted(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Removed %d completed job(s).\n\n", n)
	}

	stats, err := indexService.Stats(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Database: %s\n\n", store.Path())

	cmd.Printf("Documents: %d\n", stats.Documents.TotalDocuments)
	types := make([]string, 0, len(stats.Documents.ByFileType))
	for t := range stats.Documents.ByFileType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		cmd.Printf("  %-8s %d\n", t, stats.Documents.ByFileType[t])
	}

	if failed := stats.Changes[domain.FileChangeFailed]; failed > 0 {
		cmd.Printf("Failed files: %d\n", failed)
	}

	cmd.Printf("\nQueue: %d pending, %d processing, %d completed, %d failed\n",
		stats.Queue.Pending, stats.Queue.Processing, stats.Queue.Completed, stats.Queue.Failed)

	cmd.Printf("\nAnswer generation: %s\n", stats.RAGState)
	if stats.Vectors != nil {
		cmd.Printf("  %d chunks embedded across %d documents\n",
			stats.Vectors.TotalChunks, stats.Vectors.TotalDocuments)
	}
	if embedder != nil {
		cmd.Printf("  embedding model: %s\n", embedder.ModelName())
	}
	if llm != nil {
		cmd.Printf("  language model: %s\n", llm.ModelName())
	}
	return nil
}
