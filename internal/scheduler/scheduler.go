// Package scheduler drives the periodic synchronization of all
// configured workspaces: fetch, score, reconcile, notify.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/projectlens/lens/internal/backlog"
	"github.com/projectlens/lens/internal/scoring"
	"github.com/projectlens/lens/internal/storage"
	"github.com/projectlens/lens/internal/types"
)

// State of the scheduler loop. Exactly two states: waiting for the
// next tick, or running one full round.
type State int32

const (
	StateIdle State = iota
	StateSyncing
)

func (s State) String() string {
	if s == StateSyncing {
		return "syncing"
	}
	return "idle"
}

// TrackerClient is the slice of the remote tracker API one workspace
// round consumes. *backlog.Client satisfies it; tests substitute fakes.
type TrackerClient interface {
	ListIssues(ctx context.Context, projectIDOrKey string, statusIDs []int) ([]types.Issue, types.RateLimitWindow, error)
	Myself(ctx context.Context) (types.User, error)
}

// ClientFactory builds a tracker client for one workspace's
// credentials. Each round gets fresh clients so credential updates
// take effect on the next tick.
type ClientFactory func(domain, apiKey string) TrackerClient

// Enricher decorates newly important issues after a round (AI
// summaries). Fire-and-forget: failures never affect the round.
type Enricher interface {
	Enrich(ctx context.Context, issues []types.Issue)
}

// Config holds scheduler configuration.
type Config struct {
	// Interval between sync rounds.
	// Default: 5m
	Interval time.Duration

	// StatusFilter is the set of remote status ids to sync.
	// Default: backlog.DefaultStatusFilter (closed always excluded)
	StatusFilter []int

	// MaxConcurrentWorkspaces bounds how many workspace rounds run at
	// once. Writes stay serialized per workspace because one round
	// touches each workspace exactly once.
	// Default: 1 (fully sequential)
	MaxConcurrentWorkspaces int

	// Logger for round activity. Default: stderr with a [sched] prefix.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:                5 * time.Minute,
		StatusFilter:            backlog.DefaultStatusFilter,
		MaxConcurrentWorkspaces: 1,
		Logger:                  log.New(os.Stderr, "[sched] ", log.LstdFlags),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Interval < time.Second {
		return fmt.Errorf("interval must be at least 1s (got %s)", c.Interval)
	}
	if len(c.StatusFilter) == 0 {
		return fmt.Errorf("status filter must not be empty")
	}
	if c.MaxConcurrentWorkspaces < 1 {
		return fmt.Errorf("max_concurrent_workspaces must be at least 1 (got %d)", c.MaxConcurrentWorkspaces)
	}
	return nil
}

// Scheduler runs the sync loop for the process lifetime.
type Scheduler struct {
	store     storage.Storage
	clients   ClientFactory
	presenter Presenter
	enricher  Enricher
	scorer    *scoring.Scorer
	cfg       *Config
	logger    *log.Logger

	mu    sync.Mutex
	state State

	// now is injectable for tests.
	now func() time.Time
}

// New creates a Scheduler. presenter may be nil (events discarded);
// enricher may be nil (no enrichment).
func New(store storage.Storage, clients ClientFactory, presenter Presenter, cfg *Config) (*Scheduler, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if clients == nil {
		return nil, fmt.Errorf("client factory cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = DefaultConfig().Logger
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler config: %w", err)
	}
	if presenter == nil {
		presenter = NopPresenter{}
	}
	return &Scheduler{
		store:     store,
		clients:   clients,
		presenter: presenter,
		scorer:    scoring.New(),
		cfg:       cfg,
		logger:    cfg.Logger,
		state:     StateIdle,
		now:       time.Now,
	}, nil
}

// SetEnricher attaches an optional post-round enricher.
func (s *Scheduler) SetEnricher(e Enricher) {
	s.enricher = e
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run drives the sync loop until ctx is canceled. Round failures are
// logged and never terminate the loop; the loop is designed to run for
// the process lifetime.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Printf("scheduler started, syncing every %s", s.cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("scheduler stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			s.setState(StateSyncing)
			if _, err := s.RunRound(ctx); err != nil {
				s.logger.Printf("sync round failed: %v", err)
			}
			s.setState(StateIdle)
		}
	}
}
