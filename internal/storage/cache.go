// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/kilokokua-tui/internal/api"
)

var (
	// ErrCacheClosed is returned by operations on a closed cache.
	ErrCacheClosed = errors.New("session cache is closed")
)

// =============================================================================
// CACHE
// =============================================================================

// Cache is the SQLite-backed mirror of server-side sessions. Safe for
// concurrent use; SQLite allows a single writer, so the connection pool is
// pinned to one connection.
type Cache struct {
	db   *sql.DB
	path string
}

// DefaultCachePath returns the cache location under the user's config
// directory.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kilokokua", "sessions.db"), nil
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure cache database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache metadata: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Path returns the database file location.
func (c *Cache) Path() string { return c.path }

// =============================================================================
// SESSION LIST
// =============================================================================

// PutSessions replaces owner's cached session list with the server's copy.
func (c *Cache) PutSessions(owner string, sessions []api.Session) error {
	if c.db == nil {
		return ErrCacheClosed
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE owner = ?`, owner); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO sessions (owner, id, title, created_at, updated_at, last_message_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range sessions {
		_, err := stmt.Exec(owner, s.ID, s.Title,
			encodeTime(s.CreatedAt), encodeTime(s.UpdatedAt), encodeTime(s.LastMessageAt), i)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Sessions returns owner's cached session list in server order.
func (c *Cache) Sessions(owner string) ([]api.Session, error) {
	if c.db == nil {
		return nil, ErrCacheClosed
	}
	rows, err := c.db.Query(`
		SELECT id, title, created_at, updated_at, last_message_at
		FROM sessions WHERE owner = ? ORDER BY position`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.Session
	for rows.Next() {
		var s api.Session
		var created, updated, lastMsg string
		if err := rows.Scan(&s.ID, &s.Title, &created, &updated, &lastMsg); err != nil {
			return nil, err
		}
		s.CreatedAt = decodeTime(created)
		s.UpdatedAt = decodeTime(updated)
		s.LastMessageAt = decodeTime(lastMsg)
		out = append(out, s)
	}
	return out, rows.Err()
}

// RenameSession mirrors a committed server-side rename.
func (c *Cache) RenameSession(owner, sessionID, title string) error {
	if c.db == nil {
		return ErrCacheClosed
	}
	_, err := c.db.Exec(`UPDATE sessions SET title = ? WHERE owner = ? AND id = ?`,
		title, owner, sessionID)
	return err
}

// DeleteSession mirrors a committed server-side delete, dropping the
// session row and its cached transcript.
func (c *Cache) DeleteSession(owner, sessionID string) error {
	if c.db == nil {
		return ErrCacheClosed
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE owner = ? AND id = ?`, owner, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM messages WHERE owner = ? AND session_id = ?`, owner, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// TRANSCRIPTS
// =============================================================================

// PutTranscript replaces the cached transcript of one session.
func (c *Cache) PutTranscript(owner, sessionID string, msgs []api.SessionMessage) error {
	if c.db == nil {
		return ErrCacheClosed
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE owner = ? AND session_id = ?`, owner, sessionID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO messages (owner, session_id, id, content, is_user, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range msgs {
		isUser := 0
		if m.IsUser {
			isUser = 1
		}
		if _, err := stmt.Exec(owner, sessionID, m.ID, m.Content, isUser, encodeTime(m.CreatedAt), i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Transcript returns the cached transcript of one session in server order.
// A session that was never loaded yields an empty slice, not an error.
func (c *Cache) Transcript(owner, sessionID string) ([]api.SessionMessage, error) {
	if c.db == nil {
		return nil, ErrCacheClosed
	}
	rows, err := c.db.Query(`
		SELECT id, content, is_user, created_at
		FROM messages WHERE owner = ? AND session_id = ? ORDER BY position`, owner, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.SessionMessage
	for rows.Next() {
		var m api.SessionMessage
		var isUser int
		var created string
		if err := rows.Scan(&m.ID, &m.Content, &isUser, &created); err != nil {
			return nil, err
		}
		m.IsUser = isUser != 0
		m.CreatedAt = decodeTime(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// =============================================================================
// TIME ENCODING
// =============================================================================

func encodeTime(t api.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func decodeTime(s string) api.Timestamp {
	if s == "" {
		return api.Timestamp{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return api.Timestamp{}
	}
	return api.Timestamp{Time: parsed}
}
