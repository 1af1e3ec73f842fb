package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueProjectKey(t *testing.T) {
	tests := []struct {
		issueKey string
		want     string
	}{
		{"LENS-42", "LENS"},
		{"INFRA-1234", "INFRA"},
		{"A-B-1", "A"}, // prefix is everything before the first dash
		{"NODASH", "NODASH"},
		{"", ""},
	}
	for _, tt := range tests {
		issue := Issue{IssueKey: tt.issueKey}
		assert.Equal(t, tt.want, issue.ProjectKey(), "issue key %q", tt.issueKey)
	}
}

func TestWorkspaceTrackedProjects(t *testing.T) {
	tests := []struct {
		name        string
		projectKeys string
		want        []string
	}{
		{"single", "LENS", []string{"LENS"}},
		{"multiple", "LENS,INFRA,DOCS", []string{"LENS", "INFRA", "DOCS"}},
		{"whitespace trimmed", " LENS , INFRA ", []string{"LENS", "INFRA"}},
		{"empty entries dropped", "LENS,,INFRA,", []string{"LENS", "INFRA"}},
		{"empty config", "", nil},
		{"only separators", " , , ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := Workspace{ProjectKeys: tt.projectKeys}
			assert.Equal(t, tt.want, ws.TrackedProjects())
		})
	}
}

// The Issue struct doubles as the decode target for the remote API, so
// its tags must match the tracker's camelCase wire format.
func TestIssueDecodesWireFormat(t *testing.T) {
	payload := `{
		"id": 101,
		"issueKey": "LENS-7",
		"summary": "Fix sync retries",
		"description": "See discussion",
		"priority": {"id": 2, "name": "High"},
		"status": {"id": 1, "name": "Open"},
		"issueType": {"id": 1, "name": "Task"},
		"assignee": {"id": 9, "name": "Taro Yamada"},
		"dueDate": "2026-09-01",
		"updated": "2026-08-20T10:00:00+09:00"
	}`

	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(payload), &issue))

	assert.Equal(t, int64(101), issue.ID)
	assert.Equal(t, "LENS-7", issue.IssueKey)
	assert.Equal(t, "Fix sync retries", issue.Summary)
	require.NotNil(t, issue.Assignee)
	assert.Equal(t, int64(9), issue.Assignee.ID)
	assert.Equal(t, "2026-09-01", issue.DueDate)
	require.NotNil(t, issue.Priority)
	assert.Equal(t, "High", issue.Priority.Name)
}
