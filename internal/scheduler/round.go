package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/projectlens/lens/internal/types"
)

// RoundResult aggregates one full pass over all workspaces.
type RoundResult struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Issues         []types.Issue // flattened across workspaces
	NewlyImportant []types.Issue // crossed the threshold this round
	ImportantCount int           // issues at or above the threshold
	Workspaces     int           // enabled workspaces processed
	Failures       int           // abandoned workspaces + failed project fetches
}

// workspaceResult is the outcome of one workspace's sync.
type workspaceResult struct {
	issues         []types.Issue
	newlyImportant []types.Issue
	failedProjects int
}

// RunRound performs one synchronization pass over every workspace and
// emits the aggregate to the presenter. Workspace failures are
// isolated: they are logged, counted, and never abort the round.
func (s *Scheduler) RunRound(ctx context.Context) (*RoundResult, error) {
	result := &RoundResult{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
	}

	workspaces, err := s.store.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	if len(workspaces) == 0 {
		s.logger.Printf("no workspaces configured")
		result.FinishedAt = s.now()
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentWorkspaces)

	for _, ws := range workspaces {
		ws := ws
		g.Go(func() error {
			if !ws.Enabled {
				// Disabled workspaces keep no issues and are
				// otherwise skipped.
				if err := s.store.DeleteWorkspaceIssues(gctx, ws.ID); err != nil {
					s.logger.Printf("workspace %s: failed to purge issues: %v", ws.Domain, err)
				}
				return nil
			}

			wr, err := s.syncWorkspace(gctx, ws)

			mu.Lock()
			defer mu.Unlock()
			result.Workspaces++
			if err != nil {
				s.logger.Printf("workspace %s: round abandoned: %v", ws.Domain, err)
				result.Failures++
				return nil
			}
			result.Issues = append(result.Issues, wr.issues...)
			result.NewlyImportant = append(result.NewlyImportant, wr.newlyImportant...)
			result.Failures += wr.failedProjects
			return nil
		})
	}
	// Workspace errors are swallowed above; Wait only propagates a
	// canceled context.
	_ = g.Wait()

	for i := range result.Issues {
		if result.Issues[i].RelevanceScore >= ImportanceThreshold {
			result.ImportantCount++
		}
	}
	result.FinishedAt = s.now()

	s.present(ctx, result)

	if s.enricher != nil && len(result.NewlyImportant) > 0 {
		s.enricher.Enrich(ctx, result.NewlyImportant)
	}

	if err := s.store.RecordSyncRound(ctx, &types.SyncRound{
		ID:         result.ID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Workspaces: result.Workspaces,
		Issues:     len(result.Issues),
		Important:  result.ImportantCount,
		Failures:   result.Failures,
	}); err != nil {
		s.logger.Printf("failed to record sync round: %v", err)
	}

	s.logger.Printf("sync complete: %d workspaces, %d issues, %d important, %d failures",
		result.Workspaces, len(result.Issues), result.ImportantCount, result.Failures)
	return result, nil
}

// present pushes the round's aggregate to the presentation port.
// Delivery is fire-and-forget by contract.
func (s *Scheduler) present(ctx context.Context, result *RoundResult) {
	lang, err := s.store.GetSetting(ctx, "language")
	if err != nil {
		s.logger.Printf("failed to read language setting: %v", err)
	}

	s.presenter.SetTooltip(tooltipText(lang, result.ImportantCount))
	if len(result.NewlyImportant) > 0 {
		title, body := notificationText(lang, result.NewlyImportant)
		s.presenter.Notify(title, body)
	}
	s.presenter.Refreshed(result.FinishedAt)
}

// syncWorkspace runs one workspace's round: fetch per tracked project,
// fetch identity, score, detect threshold crossings against the scores
// persisted before this round, then reconcile.
func (s *Scheduler) syncWorkspace(ctx context.Context, ws *types.Workspace) (*workspaceResult, error) {
	client := s.clients(ws.Domain, ws.APIKey)
	projects := ws.TrackedProjects()

	var fresh []types.Issue
	var synced []string
	var window types.RateLimitWindow
	haveWindow := false
	failed := 0

	for _, project := range projects {
		issues, w, err := client.ListIssues(ctx, project, s.cfg.StatusFilter)
		if err != nil {
			// Fail open: the project stays out of the synced set so
			// reconciliation leaves its persisted issues untouched.
			s.logger.Printf("workspace %s: failed to fetch project %s: %v", ws.Domain, project, err)
			failed++
			continue
		}
		fresh = append(fresh, issues...)
		synced = append(synced, project)
		window = w
		haveWindow = true
	}

	// Identity is required input to scoring and cannot be defaulted:
	// without it the whole workspace round is abandoned for this tick.
	me, err := client.Myself(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity: %w", err)
	}

	for i := range fresh {
		fresh[i].RelevanceScore = s.scorer.Score(&fresh[i], me)
		fresh[i].WorkspaceID = ws.ID
	}

	if ws.UserID == nil {
		if err := s.store.UpdateWorkspaceIdentity(ctx, ws.ID, me); err != nil {
			s.logger.Printf("workspace %s: failed to cache identity: %v", ws.Domain, err)
		}
	}
	if haveWindow {
		if err := s.store.UpdateWorkspaceUsage(ctx, ws.ID, window); err != nil {
			s.logger.Printf("workspace %s: failed to store rate-limit window: %v", ws.Domain, err)
		}
	}

	// Previous scores must be read before reconciliation overwrites
	// them.
	previous, err := s.store.IssueScores(ctx, ws.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read previous scores: %w", err)
	}

	var newlyImportant []types.Issue
	for i := range fresh {
		var prev *int
		if p, ok := previous[fresh[i].ID]; ok {
			prev = &p
		}
		if ShouldNotify(prev, fresh[i].RelevanceScore) {
			newlyImportant = append(newlyImportant, fresh[i])
		}
	}

	if err := s.store.ReconcileIssues(ctx, ws.ID, fresh, synced, projects); err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}

	return &workspaceResult{
		issues:         fresh,
		newlyImportant: newlyImportant,
		failedProjects: failed,
	}, nil
}
