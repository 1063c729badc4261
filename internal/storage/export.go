// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/util"
)

// =============================================================================
// TRANSCRIPT EXPORT
// =============================================================================

// ExportMessage is one transcript entry prepared for export.
type ExportMessage struct {
	Role      string    `json:"role"` // "user", "assistant", "info"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ExportConversation is a transcript prepared for export to a file.
type ExportConversation struct {
	SessionID  string          `json:"session_id,omitempty"`
	Title      string          `json:"title,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []ExportMessage `json:"messages"`
}

// Markdown renders the conversation as a Markdown document.
func (c *ExportConversation) Markdown() string {
	var sb strings.Builder
	title := c.Title
	if title == "" {
		title = "KiloKōkua conversation"
	}
	sb.WriteString("# " + title + "\n\n")
	if c.SessionID != "" {
		sb.WriteString("Session: " + c.SessionID + "\n\n")
	}
	sb.WriteString("Exported: " + c.ExportedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		label := "**You**"
		switch msg.Role {
		case "assistant":
			label = "**KiloKōkua**"
		case "info":
			label = "*Note*"
		}
		if msg.CreatedAt.IsZero() {
			sb.WriteString(label + ":\n\n")
		} else {
			sb.WriteString(label + " (" + msg.CreatedAt.Format("2006-01-02 15:04") + "):\n\n")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// JSON renders the conversation as pretty-printed JSON.
func (c *ExportConversation) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// WriteExport writes exported data to path atomically.
func WriteExport(path string, data []byte) error {
	return util.AtomicWriteFile(path, data, 0o644)
}
