package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path...]",
	Short: "Index folders or files now",
	Long: `Walks the given paths (or the configured watched folders when none are
given), extracts every supported file, and indexes it. Documents whose
source files have disappeared are removed.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = cfg.General.WatchedFolders
	}
	if len(roots) == 0 {
		return fmt.Errorf("no paths given and no watched folders configured")
	}

	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", root, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("cannot index %s: %w", root, err)
		}
		roots[i] = abs
	}

	indexed, failed, err := indexService.ReindexAll(cmd.Context(), roots)
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d files", indexed)
	if failed > 0 {
		cmd.Printf(", %d failed (run with --verbose for details)", failed)
	}
	cmd.Println()
	return nil
}
