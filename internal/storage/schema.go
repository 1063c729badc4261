// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// SQLite schema for the session mirror. The position columns preserve the
// server's ordering; the mirror never re-sorts.
const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS sessions (
    owner TEXT NOT NULL,
    id TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at TEXT NOT NULL,       -- RFC 3339, empty when unknown
    updated_at TEXT NOT NULL,
    last_message_at TEXT NOT NULL,
    position INTEGER NOT NULL,      -- server list order
    PRIMARY KEY (owner, id)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner, position);

CREATE TABLE IF NOT EXISTS messages (
    owner TEXT NOT NULL,
    session_id TEXT NOT NULL,
    id INTEGER NOT NULL,            -- server message id
    content TEXT NOT NULL,
    is_user INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    position INTEGER NOT NULL,      -- server transcript order
    PRIMARY KEY (owner, session_id, position)
) WITHOUT ROWID;
`

const initMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
