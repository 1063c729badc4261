// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea interface: chat view with the
// optimistic transcript, session sidebar, login form, and a status bar
// showing the connectivity tri-state.
//
// The package renders state owned elsewhere. The chat controller, auth
// bridge, and connectivity monitor are the sources of truth; their change
// callbacks are funneled into the update loop through a channel, so the
// model re-reads state instead of duplicating it.
//
// # Usage
//
//	m := ui.New(cfg, client, bridge, monitor, ctrl)
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	_, err := p.Run()
package ui
