// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the session controller and the message transcript.
//
// The controller is UI-agnostic. Both the Bubble Tea interface and the
// plain CLI commands drive the same instance; it owns the current session
// id, the visible transcript, and the cached session list, and it reacts
// to identity changes from the auth bridge.
//
// # Key Types
//
//   - Message: one transcript entry, tagged with its origin
//   - Transcript: the ordered, append-only message list
//   - Controller: send / select / rename / delete session operations
//
// # Transcript discipline
//
// User messages are appended optimistically before the network round trip
// and are never removed, even when the send fails. Bot replies only ever
// append. Selecting a session replaces the whole transcript with the
// server's copy. Send failures surface as synthesized bot messages rather
// than transcript mutations.
package chat
