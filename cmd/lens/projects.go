package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/projectlens/lens/internal/backlog"
)

var projectsCmd = &cobra.Command{
	Use:   "projects <domain>",
	Short: "List the remote projects of a workspace",
	Long: `Query the remote tracker for every project visible to the
workspace's API key. Useful for picking the keys to pass to
"lens workspace add --projects".

Example:
  lens projects myteam.backlog.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := findWorkspace(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		client := backlog.NewClient(ws.Domain, ws.APIKey, backlog.WithTimeout(cfg.RequestTimeout()))
		projects, err := client.Projects(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects visible to this API key.")
			return nil
		}

		tracked := make(map[string]bool)
		for _, k := range ws.TrackedProjects() {
			tracked[k] = true
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		for _, p := range projects {
			mark := " "
			if tracked[p.ProjectKey] {
				mark = green("*")
			}
			fmt.Printf("%s %-12s %s\n", mark, cyan(p.ProjectKey), p.Name)
		}
		fmt.Printf("\n%s = tracked\n", green("*"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
