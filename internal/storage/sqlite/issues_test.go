package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectlens/lens/internal/types"
)

func makeIssue(id int64, key, summary string, score int) types.Issue {
	return types.Issue{
		ID:             id,
		IssueKey:       key,
		Summary:        summary,
		Priority:       &types.Ref{ID: 2, Name: "High"},
		Status:         &types.Ref{ID: 1, Name: "Open"},
		Assignee:       &types.User{ID: 9, Name: "Taro Yamada"},
		RelevanceScore: score,
	}
}

func issueKeys(issues []*types.Issue) []string {
	keys := make([]string, len(issues))
	for i, issue := range issues {
		keys[i] = issue.IssueKey
	}
	return keys
}

func TestReconcileUpsertsAndReads(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	fresh := []types.Issue{
		makeIssue(1, "LENS-1", "first", 150),
		makeIssue(2, "LENS-2", "second", 30),
	}
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, fresh, []string{"LENS"}, []string{"LENS"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	// Ordered by score descending.
	assert.Equal(t, "LENS-1", issues[0].IssueKey)
	assert.Equal(t, 150, issues[0].RelevanceScore)
	assert.Equal(t, ws.ID, issues[0].WorkspaceID)

	// The raw snapshot round-trips the nested refs.
	require.NotNil(t, issues[0].Assignee)
	assert.Equal(t, "Taro Yamada", issues[0].Assignee.Name)
	require.NotNil(t, issues[0].Priority)
	assert.Equal(t, "High", issues[0].Priority.Name)
}

func TestReconcileOverwritesExistingIssue(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID,
		[]types.Issue{makeIssue(1, "LENS-1", "original summary", 50)},
		[]string{"LENS"}, []string{"LENS"}))

	updated := makeIssue(1, "LENS-1", "edited summary", 130)
	updated.Description = "now with a description"
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID,
		[]types.Issue{updated}, []string{"LENS"}, []string{"LENS"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "edited summary", issues[0].Summary)
	assert.Equal(t, "now with a description", issues[0].Description)
	assert.Equal(t, 130, issues[0].RelevanceScore)
}

func TestReconcileIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	fresh := []types.Issue{
		makeIssue(1, "LENS-1", "first", 80),
		makeIssue(2, "LENS-2", "second", 0),
	}
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, fresh, []string{"LENS"}, []string{"LENS"}))
	before, err := s.ListIssues(ctx)
	require.NoError(t, err)

	// Same fetched set again: stored set must be unchanged.
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, fresh, []string{"LENS"}, []string{"LENS"}))
	after, err := s.ListIssues(ctx)
	require.NoError(t, err)

	assert.Equal(t, issueKeys(before), issueKeys(after))
	require.Len(t, after, 2)
}

func TestReconcileRetiresVanishedIssues(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "stays", 10),
		makeIssue(2, "LENS-2", "closed remotely", 10),
	}, []string{"LENS"}, []string{"LENS"}))

	// LENS-2 dropped out of the status filter remotely.
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "stays", 10),
	}, []string{"LENS"}, []string{"LENS"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"LENS-1"}, issueKeys(issues))
}

func TestReconcileEmptyFetchDeletesSyncedProject(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "one", 10),
		makeIssue(2, "LENS-2", "two", 10),
	}, []string{"LENS"}, []string{"LENS"}))

	// Fully synced round with an empty result: everything retires.
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, nil, []string{"LENS"}, []string{"LENS"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// A project whose fetch failed is excluded from the synced set; its
// previously persisted issues must survive the round untouched.
func TestReconcileFailOpenForUnsyncedProject(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")
	ws.ProjectKeys = "LENS,INFRA"
	require.NoError(t, s.SaveWorkspace(ctx, ws))

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "lens issue", 10),
		makeIssue(100, "INFRA-100", "infra issue", 10),
	}, []string{"LENS", "INFRA"}, []string{"LENS", "INFRA"}))

	// Next round INFRA's fetch failed: only LENS is in the synced set,
	// and the fresh set holds nothing from INFRA.
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "lens issue", 10),
	}, []string{"LENS"}, []string{"LENS", "INFRA"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"LENS-1", "INFRA-100"}, issueKeys(issues))
}

func TestReconcilePrunesDeselectedProjects(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "lens issue", 10),
		makeIssue(100, "INFRA-100", "infra issue", 10),
	}, []string{"LENS", "INFRA"}, []string{"LENS", "INFRA"}))

	// INFRA was de-selected in the workspace configuration.
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "lens issue", 10),
	}, []string{"LENS"}, []string{"LENS"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"LENS-1"}, issueKeys(issues))
}

func TestReconcileNoTrackedProjectsPurgesWorkspace(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "lens issue", 10),
	}, []string{"LENS"}, []string{"LENS"}))

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, nil, nil, nil))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// Project prefix matching is exact up to the dash: pruning "LENS" must
// not touch "LENSX" issues.
func TestReconcilePrefixMatchIsExact(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")
	ws.ProjectKeys = "LENS,LENSX"
	require.NoError(t, s.SaveWorkspace(ctx, ws))

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "lens", 10),
		makeIssue(2, "LENSX-2", "lensx", 10),
	}, []string{"LENS", "LENSX"}, []string{"LENS", "LENSX"}))

	// Empty fetch for LENS only: LENSX-2 must survive.
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, nil, []string{"LENS"}, []string{"LENS", "LENSX"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"LENSX-2"}, issueKeys(issues))
}

func TestIssueScores(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")
	other := newTestWorkspace(t, s, "other.backlog.test")

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, []types.Issue{
		makeIssue(1, "LENS-1", "one", 60),
		makeIssue(2, "LENS-2", "two", 85),
	}, []string{"LENS"}, []string{"LENS"}))
	require.NoError(t, s.ReconcileIssues(ctx, other.ID, []types.Issue{
		makeIssue(1, "LENS-1", "same id, other workspace", 99),
	}, []string{"LENS"}, []string{"LENS"}))

	scores, err := s.IssueScores(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 60, 2: 85}, scores)
}

func TestDeleteWorkspaceIssues(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")
	other := newTestWorkspace(t, s, "other.backlog.test")

	require.NoError(t, s.ReconcileIssues(ctx, ws.ID,
		[]types.Issue{makeIssue(1, "LENS-1", "one", 10)}, []string{"LENS"}, []string{"LENS"}))
	require.NoError(t, s.ReconcileIssues(ctx, other.ID,
		[]types.Issue{makeIssue(2, "LENS-2", "two", 10)}, []string{"LENS"}, []string{"LENS"}))

	require.NoError(t, s.DeleteWorkspaceIssues(ctx, ws.ID))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"LENS-2"}, issueKeys(issues))
}

func TestSetIssueSummarySurvivesReconcile(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ws := newTestWorkspace(t, s, "acme.backlog.test")

	fresh := []types.Issue{makeIssue(1, "LENS-1", "one", 90)}
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, fresh, []string{"LENS"}, []string{"LENS"}))
	require.NoError(t, s.SetIssueSummary(ctx, ws.ID, 1, "needs a schema migration first"))

	// The next sync overwrites the snapshot but keeps the summary.
	require.NoError(t, s.ReconcileIssues(ctx, ws.ID, fresh, []string{"LENS"}, []string{"LENS"}))

	issues, err := s.ListIssues(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "needs a schema migration first", issues[0].AISummary)
}
