package sqlite

const schema = `
-- App settings (key/value)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Configured tracker accounts, one per connection domain
CREATE TABLE IF NOT EXISTS workspaces (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    domain TEXT NOT NULL UNIQUE,
    api_key TEXT NOT NULL,
    project_keys TEXT NOT NULL DEFAULT '',
    user_id INTEGER,
    user_name TEXT,
    enabled INTEGER NOT NULL DEFAULT 1,
    api_limit INTEGER,
    api_remaining INTEGER,
    api_reset TEXT
);

-- Issue snapshots. raw_data holds the verbatim remote snapshot; the
-- named columns are denormalized projections recomputed on every
-- upsert and used for lookup and search only.
CREATE TABLE IF NOT EXISTS issues (
    id INTEGER NOT NULL,
    workspace_id INTEGER NOT NULL,
    issue_key TEXT NOT NULL,
    summary TEXT NOT NULL,
    description TEXT,
    priority TEXT,
    status TEXT,
    issue_type TEXT,
    assignee TEXT,
    due_date TEXT,
    updated_at TEXT,
    relevance_score INTEGER NOT NULL DEFAULT 0,
    ai_summary TEXT,
    raw_data TEXT NOT NULL,
    PRIMARY KEY (workspace_id, id),
    FOREIGN KEY (workspace_id) REFERENCES workspaces(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issues_score ON issues(relevance_score DESC);
CREATE INDEX IF NOT EXISTS idx_issues_key ON issues(workspace_id, issue_key);

-- Sync activity log, one row per scheduler round
CREATE TABLE IF NOT EXISTS sync_rounds (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    workspaces INTEGER NOT NULL DEFAULT 0,
    issues INTEGER NOT NULL DEFAULT 0,
    important INTEGER NOT NULL DEFAULT 0,
    failures INTEGER NOT NULL DEFAULT 0,
    detail TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sync_rounds_started ON sync_rounds(started_at);
`
