package cli

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		cmd.Print(string(data))
		return nil
	},
}

var configAddFolderCmd = &cobra.Command{
	Use:   "add-folder <path>",
	Short: "Add a folder to the watched list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if slices.Contains(cfg.General.WatchedFolders, abs) {
			cmd.Printf("%s is already watched\n", abs)
			return nil
		}
		cfg.General.WatchedFolders = append(cfg.General.WatchedFolders, abs)
		if err := config.Save(configDir, cfg); err != nil {
			return err
		}
		cmd.Printf("Watching %s\n", abs)
		return nil
	},
}

var configRemoveFolderCmd = &cobra.Command{
	Use:   "remove-folder <path>",
	Short: "Remove a folder from the watched list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		before := len(cfg.General.WatchedFolders)
		cfg.General.WatchedFolders = slices.DeleteFunc(cfg.General.WatchedFolders, func(p string) bool {
			return p == abs
		})
		if len(cfg.General.WatchedFolders) == before {
			return fmt.Errorf("%s is not watched", abs)
		}
		if err := config.Save(configDir, cfg); err != nil {
			return err
		}
		cmd.Printf("Stopped watching %s\n", abs)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddFolderCmd)
	configCmd.AddCommand(configRemoveFolderCmd)
	rootCmd.AddCommand(configCmd)
}
