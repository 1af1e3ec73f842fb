package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/projectlens/lens/internal/types"
)

// ReconcileIssues merges one workspace's freshly fetched issue set
// into the issues table as a single all-or-nothing transaction:
//
//  1. Upsert every fresh issue keyed by (workspace_id, id). The raw
//     snapshot and all denormalized columns are overwritten; a
//     previously stored ai_summary survives.
//  2. For each project whose fetch succeeded this round, delete
//     persisted issues of that project missing from the fresh set
//     (closed or removed remotely). Projects that failed to fetch are
//     left untouched, so their issues survive the round (fail-open).
//  3. Delete issues of projects no longer tracked. With nothing
//     tracked, the workspace keeps no issues at all.
func (s *SQLiteStorage) ReconcileIssues(ctx context.Context, workspaceID int64, fresh []types.Issue, syncedProjects, trackedProjects []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// 1. Upsert the fresh set. raw_data keeps the verbatim snapshot;
	// the named columns are recomputed projections of it.
	for i := range fresh {
		issue := &fresh[i]
		raw, err := json.Marshal(issue)
		if err != nil {
			return fmt.Errorf("failed to serialize issue %s: %w", issue.IssueKey, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO issues
			(id, workspace_id, issue_key, summary, description, priority, status, issue_type, assignee, due_date, updated_at, relevance_score, raw_data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(workspace_id, id) DO UPDATE SET
				issue_key = excluded.issue_key,
				summary = excluded.summary,
				description = excluded.description,
				priority = excluded.priority,
				status = excluded.status,
				issue_type = excluded.issue_type,
				assignee = excluded.assignee,
				due_date = excluded.due_date,
				updated_at = excluded.updated_at,
				relevance_score = excluded.relevance_score,
				raw_data = excluded.raw_data`,
			issue.ID, workspaceID, issue.IssueKey, issue.Summary, nullable(issue.Description),
			refName(issue.Priority), refName(issue.Status), refName(issue.IssueType), assigneeName(issue.Assignee),
			nullable(issue.DueDate), nullable(issue.Updated), issue.RelevanceScore, string(raw))
		if err != nil {
			return fmt.Errorf("failed to upsert issue %s: %w", issue.IssueKey, err)
		}
	}

	// 2. Retire vanished issues, but only inside projects that
	// actually synced this round.
	freshIDs := make([]any, 0, len(fresh))
	for i := range fresh {
		freshIDs = append(freshIDs, fresh[i].ID)
	}
	for _, project := range syncedProjects {
		query := "DELETE FROM issues WHERE workspace_id = ? AND issue_key LIKE ? || '-%'"
		args := []any{workspaceID, project}
		if len(freshIDs) > 0 {
			query += " AND id NOT IN (?" + strings.Repeat(", ?", len(freshIDs)-1) + ")"
			args = append(args, freshIDs...)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to prune stale issues for project %s: %w", project, err)
		}
	}

	// 3. Drop issues of de-selected projects.
	if len(trackedProjects) > 0 {
		conds := make([]string, len(trackedProjects))
		args := []any{workspaceID}
		for i, project := range trackedProjects {
			conds[i] = "issue_key NOT LIKE ? || '-%'"
			args = append(args, project)
		}
		query := "DELETE FROM issues WHERE workspace_id = ? AND (" + strings.Join(conds, " AND ") + ")"
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to prune de-selected projects: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, "DELETE FROM issues WHERE workspace_id = ?", workspaceID); err != nil {
			return fmt.Errorf("failed to purge workspace issues: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	committed = true
	return nil
}

// ListIssues returns all stored issues ordered by relevance score
// descending. The canonical value comes from the raw snapshot; score,
// workspace id and ai_summary are re-applied from their columns. Rows
// whose snapshot no longer decodes are skipped rather than failing the
// whole listing.
func (s *SQLiteStorage) ListIssues(ctx context.Context) ([]*types.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_data, relevance_score, workspace_id, ai_summary
		FROM issues ORDER BY relevance_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*types.Issue
	for rows.Next() {
		var raw string
		var score int
		var workspaceID int64
		var aiSummary sql.NullString
		if err := rows.Scan(&raw, &score, &workspaceID, &aiSummary); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		var issue types.Issue
		if err := json.Unmarshal([]byte(raw), &issue); err != nil {
			continue
		}
		issue.RelevanceScore = score
		issue.WorkspaceID = workspaceID
		issue.AISummary = aiSummary.String
		issues = append(issues, &issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}
	return issues, nil
}

// IssueScores returns the persisted relevance scores of one workspace
// keyed by issue id. The scheduler reads these before reconciliation
// to detect threshold crossings.
func (s *SQLiteStorage) IssueScores(ctx context.Context, workspaceID int64) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, relevance_score FROM issues WHERE workspace_id = ?", workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to read issue scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int64]int)
	for rows.Next() {
		var id int64
		var score int
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("failed to scan issue score: %w", err)
		}
		scores[id] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issue scores: %w", err)
	}
	return scores, nil
}

// DeleteWorkspaceIssues removes every issue of one workspace. Used
// when a workspace is disabled.
func (s *SQLiteStorage) DeleteWorkspaceIssues(ctx context.Context, workspaceID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM issues WHERE workspace_id = ?", workspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace %d issues: %w", workspaceID, err)
	}
	return nil
}

// SetIssueSummary stores the AI-generated one-line summary for an
// issue. A no-op when the issue has been retired in the meantime.
func (s *SQLiteStorage) SetIssueSummary(ctx context.Context, workspaceID, issueID int64, summary string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE issues SET ai_summary = ? WHERE workspace_id = ? AND id = ?",
		summary, workspaceID, issueID); err != nil {
		return fmt.Errorf("failed to set issue summary: %w", err)
	}
	return nil
}

// nullable maps "" to NULL so optional text stays optional in the
// denormalized columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func refName(r *types.Ref) any {
	if r == nil {
		return nil
	}
	return r.Name
}

func assigneeName(u *types.User) any {
	if u == nil {
		return nil
	}
	return u.Name
}
