package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/projectlens/lens/internal/scheduler"
)

var (
	issuesLimit         int
	issuesImportantOnly bool
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Show the scored issue mirror",
	Long: `List locally stored issues, most relevant first. Scores at or
above the importance threshold are highlighted.

Example:
  lens issues
  lens issues -n 10
  lens issues --important`,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := store.ListIssues(cmd.Context())
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Println("No issues stored. Run: lens sync")
			return nil
		}

		red := color.New(color.FgRed, color.Bold).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		shown := 0
		for _, issue := range issues {
			if issuesImportantOnly && issue.RelevanceScore < scheduler.ImportanceThreshold {
				continue
			}
			if issuesLimit > 0 && shown >= issuesLimit {
				break
			}
			shown++

			score := fmt.Sprintf("%4d", issue.RelevanceScore)
			if issue.RelevanceScore >= scheduler.ImportanceThreshold {
				score = red(score)
			}
			fmt.Printf("%s  %-12s %s\n", score, cyan(issue.IssueKey), issue.Summary)

			var meta []string
			if issue.Assignee != nil {
				meta = append(meta, "assignee: "+issue.Assignee.Name)
			}
			if issue.DueDate != "" {
				meta = append(meta, "due: "+issue.DueDate)
			}
			if issue.Status != nil {
				meta = append(meta, issue.Status.Name)
			}
			for i, m := range meta {
				if i == 0 {
					fmt.Printf("      %s", gray(m))
				} else {
					fmt.Printf("  %s", gray(m))
				}
			}
			if len(meta) > 0 {
				fmt.Println()
			}
			if issue.AISummary != "" {
				fmt.Printf("      %s\n", gray(issue.AISummary))
			}
		}

		if shown == 0 {
			fmt.Println("No issues at or above the importance threshold.")
		}
		return nil
	},
}

func init() {
	issuesCmd.Flags().IntVarP(&issuesLimit, "limit", "n", 0, "Show at most this many issues (0 = all)")
	issuesCmd.Flags().BoolVar(&issuesImportantOnly, "important", false, "Only show issues at or above the threshold")
	rootCmd.AddCommand(issuesCmd)
}
