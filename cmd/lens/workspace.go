package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/projectlens/lens/internal/backlog"
	"github.com/projectlens/lens/internal/types"
)

var (
	wsDomain   string
	wsAPIKey   string
	wsProjects string
	wsNoVerify bool
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage tracker workspaces",
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a workspace",
	Long: `Register a tracker workspace. One workspace per domain: adding
a domain that already exists updates its API key and tracked projects.

The credentials are verified against the remote API unless --no-verify
is given, which also caches your identity for scoring.

Example:
  lens workspace add --domain myteam.backlog.com --api-key KEY --projects LENS,OPS`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if wsDomain == "" || wsAPIKey == "" {
			return fmt.Errorf("--domain and --api-key are required")
		}

		ws := &types.Workspace{
			Domain:      wsDomain,
			APIKey:      wsAPIKey,
			ProjectKeys: wsProjects,
			Enabled:     true,
		}

		if !wsNoVerify {
			client := backlog.NewClient(wsDomain, wsAPIKey, backlog.WithTimeout(cfg.RequestTimeout()))
			me, err := client.Myself(cmd.Context())
			if err != nil {
				return fmt.Errorf("credential check against %s failed: %w", wsDomain, err)
			}
			ws.UserID = &me.ID
			ws.UserName = &me.Name
		}

		if err := store.SaveWorkspace(cmd.Context(), ws); err != nil {
			return fmt.Errorf("failed to save workspace: %w", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Saved workspace %s", green("✓"), wsDomain)
		if ws.UserName != nil {
			fmt.Printf(" (authenticated as %s)", *ws.UserName)
		}
		fmt.Println()
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaces, err := store.ListWorkspaces(cmd.Context())
		if err != nil {
			return err
		}
		if len(workspaces) == 0 {
			fmt.Println("No workspaces configured. Add one with: lens workspace add")
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, ws := range workspaces {
			state := "enabled"
			if !ws.Enabled {
				state = gray("disabled")
			}
			fmt.Printf("%s  %s  [%s]\n", cyan(ws.Domain), state, strings.Join(ws.TrackedProjects(), ", "))
			if ws.UserName != nil {
				fmt.Printf("  user: %s\n", *ws.UserName)
			}
			if ws.RateLimit.Remaining != nil && ws.RateLimit.Limit != nil {
				fmt.Printf("  api:  %d/%d remaining\n", *ws.RateLimit.Remaining, *ws.RateLimit.Limit)
			}
		}
		return nil
	},
}

var workspaceRemoveCmd = &cobra.Command{
	Use:   "remove <domain>",
	Short: "Remove a workspace and its issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := findWorkspace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteWorkspace(cmd.Context(), ws.ID); err != nil {
			return fmt.Errorf("failed to delete workspace: %w", err)
		}
		fmt.Printf("Removed workspace %s\n", ws.Domain)
		return nil
	},
}

var workspaceEnableCmd = &cobra.Command{
	Use:   "enable <domain>",
	Short: "Include a workspace in sync rounds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWorkspaceEnabled(cmd.Context(), args[0], true)
	},
}

var workspaceDisableCmd = &cobra.Command{
	Use:   "disable <domain>",
	Short: "Exclude a workspace from sync rounds",
	Long: `Disable a workspace. Its stored issues are purged on the next
round and no further API calls are made until it is enabled again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWorkspaceEnabled(cmd.Context(), args[0], false)
	},
}

func setWorkspaceEnabled(ctx context.Context, domain string, enabled bool) error {
	ws, err := findWorkspace(ctx, domain)
	if err != nil {
		return err
	}
	if err := store.SetWorkspaceEnabled(ctx, ws.ID, enabled); err != nil {
		return err
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("Workspace %s %s\n", ws.Domain, state)
	return nil
}

func findWorkspace(ctx context.Context, domain string) (*types.Workspace, error) {
	workspaces, err := store.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	for _, ws := range workspaces {
		if ws.Domain == domain {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("no workspace with domain %s", domain)
}

func init() {
	workspaceAddCmd.Flags().StringVar(&wsDomain, "domain", "", "Workspace domain, e.g. myteam.backlog.com")
	workspaceAddCmd.Flags().StringVar(&wsAPIKey, "api-key", "", "API key for the workspace")
	workspaceAddCmd.Flags().StringVar(&wsProjects, "projects", "", "Comma-separated project keys to track")
	workspaceAddCmd.Flags().BoolVar(&wsNoVerify, "no-verify", false, "Skip the credential check")

	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceRemoveCmd)
	workspaceCmd.AddCommand(workspaceEnableCmd)
	workspaceCmd.AddCommand(workspaceDisableCmd)
	rootCmd.AddCommand(workspaceCmd)
}
