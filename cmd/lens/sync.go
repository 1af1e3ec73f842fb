package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/projectlens/lens/internal/backlog"
	"github.com/projectlens/lens/internal/notify"
	"github.com/projectlens/lens/internal/scheduler"
)

var syncVerbose bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync round now",
	Long: `Fetch issues from every enabled workspace, score them, merge
them into the local database, and print the results. Issues that just
crossed the importance threshold are called out.

Example:
  lens sync
  lens sync -v    # include per-workspace fetch logging`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logOut := io.Discard
		if syncVerbose {
			logOut = os.Stderr
		}

		schedCfg := scheduler.DefaultConfig()
		schedCfg.MaxConcurrentWorkspaces = cfg.MaxConcurrentWorkspaces
		schedCfg.Logger = log.New(logOut, "[sync] ", log.LstdFlags)

		factory := func(domain, apiKey string) scheduler.TrackerClient {
			return backlog.NewClient(domain, apiKey, backlog.WithTimeout(cfg.RequestTimeout()))
		}

		sched, err := scheduler.New(store, factory, notify.NewConsolePresenter(), schedCfg)
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		result, err := sched.RunRound(cmd.Context())
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		fmt.Printf("\n%s Synced %d workspaces in %s\n", green("✓"),
			result.Workspaces, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
		fmt.Printf("  Issues:    %d\n", len(result.Issues))
		fmt.Printf("  Important: %d\n", result.ImportantCount)
		if result.Failures > 0 {
			fmt.Printf("  Failures:  %s\n", red(fmt.Sprintf("%d", result.Failures)))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "Log fetch activity to stderr")
	rootCmd.AddCommand(syncCmd)
}
