// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/storage"
)

// =============================================================================
// Messages
// =============================================================================

// stateChangedMsg reports that the controller, bridge, or monitor changed
// state; the model re-reads whatever it renders.
type stateChangedMsg struct{}

// sendDoneMsg reports a completed send. Transcript effects are already in
// the controller; only the error is interesting here.
type sendDoneMsg struct{ err error }

// sessionActionMsg reports a completed select/delete/rename/refresh.
type sessionActionMsg struct {
	action string
	err    error
}

// loginDoneMsg reports a completed login or registration attempt.
type loginDoneMsg struct{ err error }

// exportDoneMsg reports a transcript export.
type exportDoneMsg struct {
	path string
	err  error
}

// =============================================================================
// Commands
// =============================================================================

// waitForUpdate blocks until a collaborator reports a change.
func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}

func (m *Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: m.ctrl.Send(context.Background(), text)}
	}
}

func (m *Model) selectSessionCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return sessionActionMsg{action: "select", err: m.ctrl.SelectSession(context.Background(), id)}
	}
}

func (m *Model) deleteSessionCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return sessionActionMsg{action: "delete", err: m.ctrl.DeleteSession(context.Background(), id)}
	}
}

func (m *Model) renameSessionCmd(id, title string) tea.Cmd {
	return func() tea.Msg {
		return sessionActionMsg{action: "rename", err: m.ctrl.RenameSession(context.Background(), id, title)}
	}
}

func (m *Model) refreshSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		return sessionActionMsg{action: "refresh", err: m.ctrl.RefreshSessions(context.Background())}
	}
}

func (m *Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.bridge.Login(context.Background(), username, password)
		return loginDoneMsg{err: err}
	}
}

func (m *Model) registerCmd(username, email, password string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.bridge.Register(context.Background(), username, email, password); err != nil {
			return loginDoneMsg{err: err}
		}
		// Registration succeeded; sign straight in.
		_, err := m.bridge.Login(context.Background(), username, password)
		return loginDoneMsg{err: err}
	}
}

// exportCmd writes the visible transcript as Markdown next to the user's
// home directory.
func (m *Model) exportCmd() tea.Cmd {
	msgs := m.ctrl.Messages()
	sessionID := m.ctrl.SessionID()
	return func() tea.Msg {
		conv := &storage.ExportConversation{
			SessionID:  sessionID,
			ExportedAt: time.Now(),
		}
		for _, msg := range msgs {
			role := "user"
			switch msg.Origin {
			case chat.OriginBot:
				role = "assistant"
			case chat.OriginInfo:
				role = "info"
			}
			conv.Messages = append(conv.Messages, storage.ExportMessage{
				Role:      role,
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
			})
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path := filepath.Join(home, fmt.Sprintf("kilokokua-%s.md", time.Now().Format("20060102-150405")))
		if err := storage.WriteExport(path, []byte(conv.Markdown())); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}
