package types

import (
	"strings"
	"time"
)

// User is an authenticated tracker principal (or an issue assignee).
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ref is a small id+name pair used for issue priority, status and type.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Issue is a snapshot of a remote work item.
//
// The JSON field names match the remote tracker's wire format so the
// same struct serves as the API decode target and the raw snapshot
// persisted alongside the denormalized search columns. DueDate and
// Updated stay as the remote's literal strings; the scorer parses them
// leniently and treats unparsable text as signal-absent.
type Issue struct {
	ID             int64  `json:"id"`
	IssueKey       string `json:"issueKey"`
	Summary        string `json:"summary"`
	Description    string `json:"description,omitempty"`
	Priority       *Ref   `json:"priority,omitempty"`
	Status         *Ref   `json:"status,omitempty"`
	IssueType      *Ref   `json:"issueType,omitempty"`
	Assignee       *User  `json:"assignee,omitempty"`
	DueDate        string `json:"dueDate,omitempty"`
	Updated        string `json:"updated,omitempty"`
	RelevanceScore int    `json:"relevance_score"`
	WorkspaceID    int64  `json:"workspace_id"`
	AISummary      string `json:"ai_summary,omitempty"`
}

// ProjectKey returns the project prefix of the issue key ("LENS" for
// "LENS-42"). Returns the whole key when it carries no dash.
func (i *Issue) ProjectKey() string {
	if idx := strings.Index(i.IssueKey, "-"); idx > 0 {
		return i.IssueKey[:idx]
	}
	return i.IssueKey
}

// Project identifies a remote project the user may track.
type Project struct {
	ID         int64  `json:"id"`
	ProjectKey string `json:"projectKey"`
	Name       string `json:"name"`
}

// RateLimitWindow is the remote API usage window reported through
// response headers. Every field is independently optional: the remote
// omits headers it does not implement, and a missing or malformed
// header yields a nil field rather than an error.
type RateLimitWindow struct {
	Limit     *int64  `json:"limit"`
	Remaining *int64  `json:"remaining"`
	Reset     *string `json:"reset"`
}

// Workspace is one configured remote tracker account.
type Workspace struct {
	ID          int64   `json:"id"`
	Domain      string  `json:"domain"`
	APIKey      string  `json:"api_key"`
	ProjectKeys string  `json:"project_keys"` // comma-separated tracked project keys
	UserID      *int64  `json:"user_id,omitempty"`
	UserName    *string `json:"user_name,omitempty"`
	Enabled     bool    `json:"enabled"`

	RateLimit RateLimitWindow `json:"rate_limit"`
}

// TrackedProjects splits the comma-separated project configuration,
// trimming whitespace and dropping empty entries.
func (w *Workspace) TrackedProjects() []string {
	var keys []string
	for _, k := range strings.Split(w.ProjectKeys, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// SyncRound records the outcome of one scheduler pass over all
// workspaces, persisted to the sync log for the activity view.
type SyncRound struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Workspaces int       `json:"workspaces"`
	Issues     int       `json:"issues"`
	Important  int       `json:"important"`
	Failures   int       `json:"failures"`
	Detail     string    `json:"detail,omitempty"`
}
