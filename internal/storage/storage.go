// Package storage defines the persistence boundary of the sync engine.
package storage

import (
	"context"

	"github.com/projectlens/lens/internal/storage/sqlite"
	"github.com/projectlens/lens/internal/types"
)

// Storage is the persistence interface consumed by the scheduler and
// the CLI. All mutation of the issues table goes through
// ReconcileIssues (atomic) or DeleteWorkspaceIssues; everything else
// is single-row upserts that are safe to interleave.
type Storage interface {
	// Settings (key/value app settings, e.g. presentation language).
	// GetSetting returns "" without error when the key is absent.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Workspaces. SaveWorkspace creates or updates by domain (one
	// workspace per distinct domain) and fills in the row id.
	SaveWorkspace(ctx context.Context, ws *types.Workspace) error
	ListWorkspaces(ctx context.Context) ([]*types.Workspace, error)
	DeleteWorkspace(ctx context.Context, id int64) error
	SetWorkspaceEnabled(ctx context.Context, id int64, enabled bool) error
	UpdateWorkspaceIdentity(ctx context.Context, id int64, user types.User) error
	UpdateWorkspaceUsage(ctx context.Context, id int64, window types.RateLimitWindow) error

	// Issues. ReconcileIssues merges one workspace's freshly fetched
	// issue set into the table as a single transaction: upsert the
	// fresh set, prune synced projects' vanished issues, prune
	// de-selected projects. IssueScores returns the persisted scores
	// keyed by issue id, read for threshold-crossing comparison
	// before reconciliation overwrites them.
	ReconcileIssues(ctx context.Context, workspaceID int64, fresh []types.Issue, syncedProjects, trackedProjects []string) error
	ListIssues(ctx context.Context) ([]*types.Issue, error)
	IssueScores(ctx context.Context, workspaceID int64) (map[int64]int, error)
	DeleteWorkspaceIssues(ctx context.Context, workspaceID int64) error
	SetIssueSummary(ctx context.Context, workspaceID, issueID int64, summary string) error

	// Sync log (activity view).
	RecordSyncRound(ctx context.Context, round *types.SyncRound) error
	RecentSyncRounds(ctx context.Context, limit int) ([]*types.SyncRound, error)

	// Lifecycle
	Close() error
}

// Config holds database configuration.
type Config struct {
	// Path is the SQLite database file path.
	// Special value ":memory:" creates an in-memory database (tests).
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Path: ".lens/lens.db",
	}
}

// New creates the SQLite storage backend.
func New(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	return sqlite.New(cfg.Path)
}
