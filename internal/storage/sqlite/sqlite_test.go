package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectlens/lens/internal/types"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "lens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestWorkspace(t *testing.T, s *SQLiteStorage, domain string) *types.Workspace {
	t.Helper()
	ws := &types.Workspace{
		Domain:      domain,
		APIKey:      "key",
		ProjectKeys: "LENS",
		Enabled:     true,
	}
	require.NoError(t, s.SaveWorkspace(context.Background(), ws))
	require.NotZero(t, ws.ID)
	return ws
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// Absent key is not an error.
	v, err := s.GetSetting(ctx, "language")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.SetSetting(ctx, "language", "ja"))
	v, err = s.GetSetting(ctx, "language")
	require.NoError(t, err)
	assert.Equal(t, "ja", v)

	// Overwrite in place.
	require.NoError(t, s.SetSetting(ctx, "language", "en"))
	v, err = s.GetSetting(ctx, "language")
	require.NoError(t, err)
	assert.Equal(t, "en", v)
}

func TestSyncLog(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		round := &types.SyncRound{
			ID:         string(rune('a' + i)),
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Workspaces: 2,
			Issues:     10 + i,
			Important:  i,
			Failures:   0,
		}
		require.NoError(t, s.RecordSyncRound(ctx, round))
	}

	rounds, err := s.RecentSyncRounds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, "c", rounds[0].ID, "newest first")
	assert.Equal(t, "b", rounds[1].ID)
	assert.Equal(t, 12, rounds[0].Issues)
}
