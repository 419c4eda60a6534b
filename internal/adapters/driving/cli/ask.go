package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

var (
	askStream bool
	askFile   string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question answered from indexed documents",
	Long: `Retrieves the most relevant passages from the index and generates an
answer grounded in them. Requires an embedding provider and a language
model provider in the config; run 'docsearch status' to check the
capability state.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer as it is generated")
	askCmd.Flags().StringVar(&askFile, "file", "", "restrict retrieval to one indexed file path")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if askStream {
		return runAskStream(cmd, question)
	}

	answer, err := ragService.Ask(cmd.Context(), question, askFile)
	if err != nil {
		return err
	}
	cmd.Println(answer.Text)
	printSources(cmd, answer.Sources)
	return nil
}

func runAskStream(cmd *cobra.Command, question string) error {
	tokens, sourcesCh, errCh := ragService.AskStream(cmd.Context(), question, askFile)

	for tok := range tokens {
		cmd.Print(tok)
	}
	cmd.Println()

	if err := <-errCh; err != nil {
		return err
	}
	printSources(cmd, <-sourcesCh)
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.RetrievalResult) {
	if len(sources) == 0 {
		return
	}
	cmd.Println("\nSources:")
	seen := make(map[string]bool)
	for _, src := range sources {
		if seen[src.FilePath] {
			continue
		}
		seen[src.FilePath] = true
		cmd.Printf("  - %s\n", src.FilePath)
	}
}
