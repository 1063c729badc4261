// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/auth"
	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/config"
	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

// focusArea identifies which pane receives keystrokes.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// Model is the root Bubble Tea model.
type Model struct {
	cfg     *config.Config
	client  *api.Client
	bridge  *auth.Bridge
	monitor *connectivity.Monitor
	ctrl    *chat.Controller

	// updates funnels collaborator change callbacks into the update loop.
	updates chan struct{}

	width  int
	height int
	ready  bool

	focus       focusArea
	showSidebar bool
	showLogin   bool

	chat    chatView
	sidebar sidebarView
	login   loginView

	// notice is a transient status bar message.
	notice string
}

// New builds the root model and hooks it to its collaborators.
func New(cfg *config.Config, client *api.Client, bridge *auth.Bridge, monitor *connectivity.Monitor, ctrl *chat.Controller) *Model {
	m := &Model{
		cfg:     cfg,
		client:  client,
		bridge:  bridge,
		monitor: monitor,
		ctrl:    ctrl,
		updates: make(chan struct{}, 8),
		chat:    newChatView(cfg.UI.Markdown),
		sidebar: newSidebarView(cfg.UI.SidebarWidth),
		login:   newLoginView(),
	}

	// Coalescing push: a full channel means a redraw is already pending.
	push := func() {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	}
	ctrl.Subscribe(push)
	monitor.Subscribe(func(connectivity.Status) { push() })
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.chat.spinner.Tick,
		m.monitor.ProbeCmd(context.Background()),
		m.monitor.PollTickCmd(),
		waitForUpdate(m.updates),
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.syncFromState()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectivity.StatusMsg:
		return m, nil

	case connectivity.PollTickMsg:
		return m, m.monitor.HandleTick(context.Background())

	case stateChangedMsg:
		m.syncFromState()
		return m, waitForUpdate(m.updates)

	case sendDoneMsg:
		m.syncFromState()
		if errors.Is(msg.err, chat.ErrSendInProgress) {
			m.notice = "still waiting for the previous reply"
		}
		return m, nil

	case sessionActionMsg:
		m.syncFromState()
		if msg.err != nil && !api.IsAuthRequired(msg.err) {
			m.notice = msg.action + " failed: " + shortError(msg.err)
		}
		return m, nil

	case loginDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.errText = shortError(msg.err)
			return m, nil
		}
		m.showLogin = false
		m.login.reset()
		m.focus = focusInput
		m.chat.input.Focus()
		m.syncFromState()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.notice = "export failed: " + shortError(msg.err)
		} else {
			m.notice = "exported to " + msg.path
		}
		return m, nil
	}

	// Everything else (blink, spinner ticks, mouse wheel) goes to the
	// visible components.
	if m.showLogin {
		return m, m.login.update(msg)
	}
	return m, m.chat.update(msg)
}

// =============================================================================
// Key handling
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	m.notice = ""

	if m.showLogin {
		return m.handleLoginKey(msg)
	}

	switch msg.String() {
	case "ctrl+n":
		m.ctrl.NewSession()
		m.focus = focusInput
		return m, nil
	case "ctrl+b":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.focus = focusSidebar
		} else {
			m.focus = focusInput
		}
		m.layout()
		m.syncFromState()
		return m, m.refreshSessionsCmd()
	case "ctrl+l":
		if m.bridge.Current().Authenticated() {
			m.bridge.Logout()
			return m, nil
		}
		m.showLogin = true
		m.login.reset()
		return m, textinput.Blink
	case "ctrl+e":
		return m, m.exportCmd()
	case "ctrl+r":
		m.monitor.Retry()
		return m, nil
	case "tab":
		if m.showSidebar {
			if m.focus == focusInput {
				m.focus = focusSidebar
			} else {
				m.focus = focusInput
			}
			return m, nil
		}
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		text := m.chat.takeInput()
		if text == "" {
			return m, nil
		}
		return m, tea.Batch(m.sendCmd(text), m.chat.spinner.Tick)
	}
	return m, m.chat.update(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sidebar.renaming {
		switch msg.Type {
		case tea.KeyEnter:
			title := m.sidebar.finishRename()
			if s, ok := m.sidebar.selected(); ok && title != "" {
				return m, m.renameSessionCmd(s.ID, title)
			}
			return m, nil
		case tea.KeyEsc:
			m.sidebar.cancelRename()
			return m, nil
		}
		var cmd tea.Cmd
		m.sidebar.renameInput, cmd = m.sidebar.renameInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		m.sidebar.moveCursor(-1)
	case "down", "j":
		m.sidebar.moveCursor(1)
	case "enter":
		if s, ok := m.sidebar.selected(); ok {
			m.focus = focusInput
			return m, m.selectSessionCmd(s.ID)
		}
	case "d":
		if s, ok := m.sidebar.selected(); ok {
			return m, m.deleteSessionCmd(s.ID)
		}
	case "r":
		m.sidebar.startRename()
		return m, textinput.Blink
	case "esc":
		m.focus = focusInput
	}
	return m, nil
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.showLogin = false
		m.login.reset()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.login.focusField(m.login.focusIdx + 1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.login.focusField(m.login.focusIdx - 1)
		return m, nil
	case tea.KeyEnter:
		if m.login.busy {
			return m, nil
		}
		if errText := m.login.validate(); errText != "" {
			m.login.errText = errText
			return m, nil
		}
		m.login.errText = ""
		m.login.busy = true
		if m.login.register {
			return m, m.registerCmd(m.login.username.Value(), m.login.email.Value(), m.login.password.Value())
		}
		return m, m.loginCmd(m.login.username.Value(), m.login.password.Value())
	}
	if msg.String() == "ctrl+t" {
		m.login.toggleMode()
		return m, nil
	}
	return m, m.login.update(msg)
}

// =============================================================================
// Layout and rendering
// =============================================================================

func (m *Model) layout() {
	chatWidth := m.width
	if m.showSidebar {
		chatWidth -= m.cfg.UI.SidebarWidth + 2
	}
	// Header, help line, status bar.
	contentHeight := m.height - 3
	m.chat.setSize(chatWidth, contentHeight)
	m.sidebar.setSize(contentHeight - 2)
}

// syncFromState re-reads everything the model renders.
func (m *Model) syncFromState() {
	m.chat.refresh(m.ctrl.Messages(), m.ctrl.Sending())
	m.sidebar.refresh(m.ctrl.Sessions(), m.ctrl.SessionID(), m.ctrl.SessionsFromCache())
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := styles.Header.Render("KiloKōkua – The Hawaiʻi Climate AI Concierge")

	var body string
	if m.showLogin {
		body = lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center, m.login.view())
	} else if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.sidebar.view(m.focus == focusSidebar),
			m.chat.view(m.focus == focusInput),
		)
	} else {
		body = m.chat.view(m.focus == focusInput)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		styles.HelpText.Render(m.helpLine()),
		m.statusBar(),
	)
}

func (m *Model) helpLine() string {
	if m.showLogin {
		return " tab fields - enter submit - esc cancel"
	}
	if m.focus == focusSidebar {
		return " enter open - r rename - d delete - esc back - ctrl+b hide"
	}
	help := " enter send - ctrl+n new chat - ctrl+b sessions - ctrl+e export - ctrl+c quit"
	if m.bridge.Current().Authenticated() {
		return help + " - ctrl+l logout"
	}
	return help + " - ctrl+l login"
}

// shortError trims an error for status line display.
func shortError(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
