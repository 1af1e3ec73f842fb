package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var activityLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent sync rounds",
	Long: `Display the sync log, newest first: when each round ran, how
many workspaces and issues it covered, and whether anything failed.

Example:
  lens activity
  lens activity -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rounds, err := store.RecentSyncRounds(cmd.Context(), activityLimit)
		if err != nil {
			return err
		}
		if len(rounds) == 0 {
			fmt.Println("No sync rounds recorded yet. Run: lens sync")
			return nil
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, r := range rounds {
			mark := green("✓")
			if r.Failures > 0 {
				mark = red("✗")
			}
			took := r.FinishedAt.Sub(r.StartedAt).Round(10 * time.Millisecond)
			fmt.Printf("%s %s  %d workspaces, %d issues, %d important",
				mark, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Workspaces, r.Issues, r.Important)
			if r.Failures > 0 {
				fmt.Printf(", %s", red(fmt.Sprintf("%d failures", r.Failures)))
			}
			fmt.Printf("  %s\n", gray(took.String()))
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 20, "Number of rounds to show")
	rootCmd.AddCommand(activityCmd)
}
