package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/projectlens/lens/internal/backlog"
	"github.com/projectlens/lens/internal/enrich"
	"github.com/projectlens/lens/internal/notify"
	"github.com/projectlens/lens/internal/scheduler"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the sync loop until interrupted",
	Long: `Run the synchronization loop in the foreground. Every interval
(default 5 minutes) all enabled workspaces are synced, issues are
re-scored, and threshold crossings raise a desktop notification.

An initial sync runs immediately on startup. Stop with Ctrl-C.

Example:
  lens daemon
  lens daemon --config /etc/lens/lens.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "[lens] ", log.LstdFlags)
		if cfg.Log.File != "" {
			logger = log.New(&lumberjack.Logger{
				Filename:   cfg.Log.File,
				MaxSize:    cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAgeDays,
			}, "[lens] ", log.LstdFlags)
		}

		schedCfg := scheduler.DefaultConfig()
		schedCfg.Interval = cfg.Interval()
		schedCfg.MaxConcurrentWorkspaces = cfg.MaxConcurrentWorkspaces
		schedCfg.Logger = logger

		factory := func(domain, apiKey string) scheduler.TrackerClient {
			return backlog.NewClient(domain, apiKey, backlog.WithTimeout(cfg.RequestTimeout()))
		}

		sched, err := scheduler.New(store, factory, notify.NewDesktopPresenter(logger), schedCfg)
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		if cfg.Enrich.Enabled {
			summarizer, err := enrich.New(store, &enrich.Config{
				Model:             cfg.Enrich.Model,
				MaxIssuesPerRound: cfg.Enrich.MaxIssuesPerRound,
				Logger:            logger,
			})
			if err != nil {
				logger.Printf("enrichment disabled: %v", err)
			} else {
				sched.SetEnricher(summarizer)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// First sync right away; the ticker covers the rest.
		if _, err := sched.RunRound(ctx); err != nil {
			logger.Printf("initial sync failed: %v", err)
		}
		sched.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
