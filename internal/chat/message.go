// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/kilokokua-tui/internal/api"
)

// =============================================================================
// Messages
// =============================================================================

// Origin identifies who produced a transcript entry.
type Origin int

const (
	// OriginUser is a message typed by the person at the keyboard.
	OriginUser Origin = iota

	// OriginBot is a reply from the assistant, including synthesized
	// replies for failed or blocked sends.
	OriginBot

	// OriginInfo is a local informational notice. Never sent anywhere.
	OriginInfo
)

// Message is one transcript entry.
type Message struct {
	// LocalID correlates the optimistic entry with later updates. Always
	// set; the server never sees it.
	LocalID uuid.UUID

	// ServerID is the backend's message id when the entry came from a
	// transcript load. Zero for locally created entries.
	ServerID int64

	Origin    Origin
	Content   string
	CreatedAt time.Time

	// Pending marks a user message whose send is still in flight.
	Pending bool
}

func newLocalMessage(origin Origin, content string) Message {
	return Message{
		LocalID:   uuid.New(),
		Origin:    origin,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// Transcript
// =============================================================================

// Transcript is the ordered list of visible messages. Entries only ever
// append, except for Replace (bulk load of a selected session) and Clear
// (new session). Not safe for concurrent use; the controller guards it.
type Transcript struct {
	entries []Message
}

// Append adds a message to the end and returns its local id.
func (t *Transcript) Append(m Message) uuid.UUID {
	t.entries = append(t.entries, m)
	return m.LocalID
}

// Replace swaps the whole transcript for a server-loaded one.
func (t *Transcript) Replace(msgs []api.SessionMessage) {
	entries := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		origin := OriginBot
		if m.IsUser {
			origin = OriginUser
		}
		entries = append(entries, Message{
			LocalID:   uuid.New(),
			ServerID:  m.ID,
			Origin:    origin,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Time,
		})
	}
	t.entries = entries
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.entries = nil
}

// Messages returns a copy of the entries in visible order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Empty reports whether the transcript has no entries.
func (t *Transcript) Empty() bool {
	return len(t.entries) == 0
}

// HasConversation reports whether any user or bot message is present.
// Informational notices alone do not count.
func (t *Transcript) HasConversation() bool {
	for _, m := range t.entries {
		if m.Origin == OriginUser || m.Origin == OriginBot {
			return true
		}
	}
	return false
}

// settle clears the Pending flag on the message with the given local id.
func (t *Transcript) settle(id uuid.UUID) {
	for i := range t.entries {
		if t.entries[i].LocalID == id {
			t.entries[i].Pending = false
			return
		}
	}
}
