// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

// loginView is the sign-in / sign-up form.
type loginView struct {
	register bool // false = login, true = register

	username textinput.Model
	email    textinput.Model
	password textinput.Model

	focusIdx int
	errText  string
	busy     bool
}

func newLoginView() loginView {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginView{username: username, email: email, password: password}
}

// fields returns the visible inputs in focus order.
func (lv *loginView) fields() []*textinput.Model {
	if lv.register {
		return []*textinput.Model{&lv.username, &lv.email, &lv.password}
	}
	return []*textinput.Model{&lv.username, &lv.password}
}

func (lv *loginView) focusField(idx int) {
	fields := lv.fields()
	if idx < 0 {
		idx = len(fields) - 1
	}
	if idx >= len(fields) {
		idx = 0
	}
	lv.focusIdx = idx
	for i, f := range fields {
		if i == idx {
			f.Focus()
		} else {
			f.Blur()
		}
	}
}

func (lv *loginView) toggleMode() {
	lv.register = !lv.register
	lv.errText = ""
	lv.focusField(0)
}

func (lv *loginView) reset() {
	lv.username.Reset()
	lv.email.Reset()
	lv.password.Reset()
	lv.errText = ""
	lv.busy = false
	lv.focusField(0)
}

// validate checks the form locally; returns "" when submittable.
func (lv *loginView) validate() string {
	if strings.TrimSpace(lv.username.Value()) == "" {
		return "username is required"
	}
	if lv.register && !strings.Contains(lv.email.Value(), "@") {
		return "a valid email is required"
	}
	if lv.password.Value() == "" {
		return "password is required"
	}
	return ""
}

func (lv *loginView) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, f := range lv.fields() {
		var cmd tea.Cmd
		*f, cmd = f.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (lv *loginView) view() string {
	var sb strings.Builder
	if lv.register {
		sb.WriteString(styles.Header.Render("Create your account"))
	} else {
		sb.WriteString(styles.Header.Render("Welcome Back"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(styles.FormLabel.Render("Username") + " " + lv.username.View() + "\n")
	if lv.register {
		sb.WriteString(styles.FormLabel.Render("Email") + " " + lv.email.View() + "\n")
	}
	sb.WriteString(styles.FormLabel.Render("Password") + " " + lv.password.View() + "\n\n")

	if lv.errText != "" {
		sb.WriteString(styles.FormError.Render(lv.errText))
		sb.WriteString("\n\n")
	}
	if lv.busy {
		sb.WriteString(styles.RenderMuted("signing in..."))
		sb.WriteString("\n\n")
	}

	if lv.register {
		sb.WriteString(styles.HelpText.Render("enter submit - ctrl+t switch to sign in - esc cancel"))
	} else {
		sb.WriteString(styles.HelpText.Render("enter submit - ctrl+t switch to sign up - esc cancel"))
	}
	return sb.String()
}
