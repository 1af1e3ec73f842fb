package sqlite

import (
	"context"
	"fmt"

	"github.com/projectlens/lens/internal/types"
)

// RecordSyncRound appends one round's outcome to the sync log.
func (s *SQLiteStorage) RecordSyncRound(ctx context.Context, round *types.SyncRound) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_rounds (id, started_at, finished_at, workspaces, issues, important, failures, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		round.ID, round.StartedAt, round.FinishedAt,
		round.Workspaces, round.Issues, round.Important, round.Failures, round.Detail)
	if err != nil {
		return fmt.Errorf("failed to record sync round: %w", err)
	}
	return nil
}

// RecentSyncRounds returns the most recent rounds, newest first.
func (s *SQLiteStorage) RecentSyncRounds(ctx context.Context, limit int) ([]*types.SyncRound, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, workspaces, issues, important, failures, detail
		FROM sync_rounds ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*types.SyncRound
	for rows.Next() {
		var r types.SyncRound
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.Workspaces, &r.Issues, &r.Important, &r.Failures, &r.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan sync round: %w", err)
		}
		rounds = append(rounds, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync rounds: %w", err)
	}
	return rounds, nil
}
