// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
	"github.com/jeranaias/kilokokua-tui/internal/util"
)

// sidebarView renders the session list with cursor selection and an inline
// rename field.
type sidebarView struct {
	sessions  []api.Session
	activeID  string // session open in the chat view
	fromCache bool
	cursor    int

	renaming    bool
	renameInput textinput.Model

	width  int
	height int
}

func newSidebarView(width int) sidebarView {
	ri := textinput.New()
	ri.CharLimit = 120
	return sidebarView{width: width, renameInput: ri}
}

func (sv *sidebarView) setSize(height int) {
	sv.height = height
	sv.renameInput.Width = sv.width - 6
}

// refresh replaces the list and clamps the cursor.
func (sv *sidebarView) refresh(sessions []api.Session, activeID string, fromCache bool) {
	sv.sessions = sessions
	sv.activeID = activeID
	sv.fromCache = fromCache
	if sv.cursor >= len(sessions) {
		sv.cursor = len(sessions) - 1
	}
	if sv.cursor < 0 {
		sv.cursor = 0
	}
}

func (sv *sidebarView) moveCursor(delta int) {
	sv.cursor += delta
	if sv.cursor < 0 {
		sv.cursor = 0
	}
	if sv.cursor >= len(sv.sessions) {
		sv.cursor = len(sv.sessions) - 1
	}
}

// selected returns the session under the cursor.
func (sv *sidebarView) selected() (api.Session, bool) {
	if sv.cursor < 0 || sv.cursor >= len(sv.sessions) {
		return api.Session{}, false
	}
	return sv.sessions[sv.cursor], true
}

// startRename opens the inline rename field pre-filled with the current
// title.
func (sv *sidebarView) startRename() bool {
	s, ok := sv.selected()
	if !ok {
		return false
	}
	sv.renaming = true
	sv.renameInput.SetValue(s.DisplayTitle())
	sv.renameInput.Focus()
	return true
}

// finishRename closes the field and returns the entered title.
func (sv *sidebarView) finishRename() string {
	sv.renaming = false
	sv.renameInput.Blur()
	return strings.TrimSpace(sv.renameInput.Value())
}

func (sv *sidebarView) cancelRename() {
	sv.renaming = false
	sv.renameInput.Blur()
}

func (sv *sidebarView) view(focused bool) string {
	var sb strings.Builder
	sb.WriteString(styles.SidebarTitle.Render("Your Conversations"))
	if sv.fromCache {
		sb.WriteString("\n")
		sb.WriteString(styles.RenderWarning("(offline copy)"))
	}
	sb.WriteString("\n\n")

	if len(sv.sessions) == 0 {
		sb.WriteString(styles.RenderMuted("No conversations yet."))
		sb.WriteString("\n")
		sb.WriteString(styles.RenderMuted("Start chatting!"))
	}

	titleWidth := sv.width - 6
	for i, s := range sv.sessions {
		if sv.renaming && i == sv.cursor && focused {
			sb.WriteString(sv.renameInput.View())
			sb.WriteString("\n")
			continue
		}

		title := util.TruncateWidth(s.DisplayTitle(), titleWidth)
		line := title
		style := styles.SidebarItem
		switch {
		case i == sv.cursor && focused:
			style = styles.SidebarSelected
			line = "> " + title
		case s.ID == sv.activeID:
			style = styles.SidebarActive
			line = "* " + title
		default:
			line = "  " + title
		}
		sb.WriteString(style.Render(line))
		sb.WriteString("\n")
		if !s.LastMessageAt.IsZero() {
			sb.WriteString(styles.RenderMuted("  " + s.LastMessageAt.Format("2006-01-02 15:04")))
			sb.WriteString("\n")
		}
	}

	return styles.SidebarBorder.
		Width(sv.width).
		Height(sv.height).
		Render(sb.String())
}
