package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/projectlens/lens/internal/types"
)

// SaveWorkspace creates or updates a workspace. The connection domain
// is the natural key: saving an existing domain updates that row in
// place instead of creating a duplicate. The workspace's ID field is
// filled in on return.
func (s *SQLiteStorage) SaveWorkspace(ctx context.Context, ws *types.Workspace) error {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM workspaces WHERE domain = ?", ws.Domain).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO workspaces (domain, api_key, project_keys, user_id, user_name, enabled, api_limit, api_remaining, api_reset)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ws.Domain, ws.APIKey, ws.ProjectKeys, ws.UserID, ws.UserName, ws.Enabled,
			ws.RateLimit.Limit, ws.RateLimit.Remaining, ws.RateLimit.Reset)
		if err != nil {
			return fmt.Errorf("failed to insert workspace: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read workspace id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up workspace by domain: %w", err)
	default:
		_, err := s.db.ExecContext(ctx, `
			UPDATE workspaces
			SET api_key = ?, project_keys = ?, user_id = ?, user_name = ?, enabled = ?, api_limit = ?, api_remaining = ?, api_reset = ?
			WHERE id = ?`,
			ws.APIKey, ws.ProjectKeys, ws.UserID, ws.UserName, ws.Enabled,
			ws.RateLimit.Limit, ws.RateLimit.Remaining, ws.RateLimit.Reset, id)
		if err != nil {
			return fmt.Errorf("failed to update workspace: %w", err)
		}
	}
	ws.ID = id
	return nil
}

// ListWorkspaces returns all workspaces ordered by id.
func (s *SQLiteStorage) ListWorkspaces(ctx context.Context) ([]*types.Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, api_key, project_keys, user_id, user_name, enabled, api_limit, api_remaining, api_reset
		FROM workspaces ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []*types.Workspace
	for rows.Next() {
		var ws types.Workspace
		if err := rows.Scan(&ws.ID, &ws.Domain, &ws.APIKey, &ws.ProjectKeys,
			&ws.UserID, &ws.UserName, &ws.Enabled,
			&ws.RateLimit.Limit, &ws.RateLimit.Remaining, &ws.RateLimit.Reset); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, &ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workspaces: %w", err)
	}
	return workspaces, nil
}

// DeleteWorkspace removes a workspace. Its issues go with it via the
// foreign-key cascade.
func (s *SQLiteStorage) DeleteWorkspace(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM workspaces WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete workspace %d: %w", id, err)
	}
	return nil
}

// SetWorkspaceEnabled flips the enabled flag.
func (s *SQLiteStorage) SetWorkspaceEnabled(ctx context.Context, id int64, enabled bool) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE workspaces SET enabled = ? WHERE id = ?", enabled, id); err != nil {
		return fmt.Errorf("failed to update workspace %d enabled flag: %w", id, err)
	}
	return nil
}

// UpdateWorkspaceIdentity caches the authenticated principal.
func (s *SQLiteStorage) UpdateWorkspaceIdentity(ctx context.Context, id int64, user types.User) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE workspaces SET user_id = ?, user_name = ? WHERE id = ?", user.ID, user.Name, id); err != nil {
		return fmt.Errorf("failed to update workspace %d identity: %w", id, err)
	}
	return nil
}

// UpdateWorkspaceUsage overwrites the workspace's rate-limit window.
func (s *SQLiteStorage) UpdateWorkspaceUsage(ctx context.Context, id int64, window types.RateLimitWindow) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE workspaces SET api_limit = ?, api_remaining = ?, api_reset = ? WHERE id = ?",
		window.Limit, window.Remaining, window.Reset, id); err != nil {
		return fmt.Errorf("failed to update workspace %d usage: %w", id, err)
	}
	return nil
}
