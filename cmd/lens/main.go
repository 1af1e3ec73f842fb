// lens keeps a local, scored mirror of your issue tracker workspaces.
//
// It periodically pulls issues from each configured workspace, scores
// them for personal relevance, and raises a desktop notification when
// an issue first crosses the importance threshold.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/projectlens/lens/internal/config"
	"github.com/projectlens/lens/internal/storage"
)

var (
	configPath string
	dbPath     string

	cfg   *config.Config
	store storage.Storage
)

var rootCmd = &cobra.Command{
	Use:   "lens",
	Short: "Sync and score issue tracker workspaces",
	Long: `lens maintains a local SQLite mirror of the issues in your
tracker workspaces, scored by how relevant each issue is to you:
assignment, due dates, recent activity, and mentions of your name.

Typical workflow:
  lens workspace add --domain myteam.backlog.com --api-key KEY --projects LENS,OPS
  lens sync                  # one-shot sync, prints the results
  lens issues                # show the scored mirror
  lens daemon                # keep syncing every few minutes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		store, err = storage.New(cmd.Context(), &storage.Config{Path: cfg.DBPath})
		if err != nil {
			return fmt.Errorf("failed to open database %s: %w", cfg.DBPath, err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".lens/lens.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides config)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
