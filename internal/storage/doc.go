// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local SQLite mirror of server-side chat
// sessions, plus transcript export.
//
// The mirror is a display cache, not a source of truth. Every successful
// session list or transcript load overwrites it, renames and deletes are
// mirrored through, and nothing read from it is ever sent back to the
// backend. Its only job is to let the sidebar and previously viewed
// transcripts render while the backend is unreachable.
//
// Rows are keyed by the owning username. Anonymous conversations are never
// cached; the server cannot resume them, so a stale local copy would only
// mislead.
//
// # Key Types
//
//   - Cache: the SQLite-backed mirror
//   - ExportConversation: a transcript prepared for Markdown or JSON export
package storage
