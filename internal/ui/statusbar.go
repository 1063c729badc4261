// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

// connectivityLabel renders the tri-state with its shape indicator. The
// Unknown state reads "Connecting..." like the original status footer, and
// a reachable-but-uninitialized backend is called out separately from a
// dead one.
func connectivityLabel(st connectivity.Status) string {
	switch {
	case st.State == connectivity.StateConnected:
		return lipgloss.NewStyle().Foreground(styles.Emerald).
			Render(styles.StatusIndicators.Connected + " Connected")
	case st.State == connectivity.StateUnknown:
		return lipgloss.NewStyle().Foreground(styles.Amber).
			Render(styles.StatusIndicators.Connecting + " Connecting...")
	case st.Degraded:
		return lipgloss.NewStyle().Foreground(styles.Amber).
			Render(styles.StatusIndicators.Degraded + " Service starting up")
	default:
		return lipgloss.NewStyle().Foreground(styles.Rose).
			Render(styles.StatusIndicators.Disconnected + " Disconnected (ctrl+r to retry)")
	}
}

// statusBar renders the bottom bar: connectivity on the left, identity and
// transient notices on the right.
func (m *Model) statusBar() string {
	left := "API: " + connectivityLabel(m.monitor.Status())

	right := "anonymous"
	if ident := m.bridge.Current(); ident.Authenticated() {
		right = "Aloha, " + ident.Username() + "!"
	}
	if m.notice != "" {
		right = m.notice + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.StatusBar.Width(m.width).Render(
		left + lipgloss.NewStyle().Width(gap).Render("") + right,
	)
}
