package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

var (
	searchPage int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed documents",
	Long: `Runs a full-text query against the index. Queries support quoted
phrases, AND/OR/NOT, parentheses, and filters such as type:pdf,
author:smith, after:2022, before:2024-06-01 and year:2023.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "result page to show")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	resp, err := searchService.Search(cmd.Context(), query, searchPage)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	return printSearchResponse(cmd, resp)
}

func printSearchResponse(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if resp.Total == 0 {
		cmd.Println("No results found.")
		return nil
	}

	pages := (resp.Total + resp.PageSize - 1) / resp.PageSize
	cmd.Printf("%d results (page %d of %d, %dms)\n\n", resp.Total, resp.Page, pages, resp.TookMS)

	rank := (resp.Page-1)*resp.PageSize + 1
	for _, hit := range resp.Hits {
		title := hit.Document.Title
		if title == "" {
			title = hit.Document.FileName
		}
		cmd.Printf("  [%d] %s (%.2f)\n", rank, title, hit.Score)
		cmd.Printf("      %s\n", hit.Document.FilePath)
		for _, snippet := range hit.Snippets {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
		rank++
	}
	return nil
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Suggest indexed file names for a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := searchService.Suggest(cmd.Context(), args[0], 10)
		if err != nil {
			return err
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
