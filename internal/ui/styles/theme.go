// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ApplyTheme configures light/dark rendering from the config's theme value.
// "auto" asks the terminal; "dark" and "light" force the palette side that
// every AdaptiveColor in this package resolves against.
func ApplyTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
	}
}

// GlamourStyle returns the glamour style name matching the active theme.
func GlamourStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// =============================================================================
// SHARED COMPONENT STYLES
// =============================================================================

// Header is the application title bar.
var Header = lipgloss.NewStyle().
	Foreground(Teal).
	Bold(true).
	Padding(0, 1)

// StatusBar is the bottom bar carrying connectivity and identity.
var StatusBar = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(SurfaceDim).
	Padding(0, 1)

// SidebarBorder frames the session list.
var SidebarBorder = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// SidebarTitle heads the session list.
var SidebarTitle = lipgloss.NewStyle().
	Foreground(Teal).
	Bold(true)

// SidebarItem is an unselected session row.
var SidebarItem = lipgloss.NewStyle().
	Foreground(TextSecondary)

// SidebarSelected is the highlighted session row.
var SidebarSelected = lipgloss.NewStyle().
	Foreground(Ocean).
	Bold(true)

// SidebarActive marks the session currently open in the chat view.
var SidebarActive = lipgloss.NewStyle().
	Foreground(Emerald)

// InputBorder frames the message input.
var InputBorder = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// InputFocused is InputBorder with the focus accent.
var InputFocused = InputBorder.BorderForeground(Ocean)

// UserLabel heads a user message in the transcript.
var UserLabel = lipgloss.NewStyle().
	Foreground(UserBubbleFg).
	Bold(true)

// AssistantLabel heads an assistant message in the transcript.
var AssistantLabel = lipgloss.NewStyle().
	Foreground(AssistantBubbleFg).
	Bold(true)

// InfoText renders informational notices.
var InfoText = lipgloss.NewStyle().
	Foreground(InfoBubbleFg).
	Italic(true)

// FormLabel is a login form field label.
var FormLabel = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(10)

// FormError renders a form validation or server error line.
var FormError = lipgloss.NewStyle().
	Foreground(Rose)

// HelpText renders the key hint line.
var HelpText = lipgloss.NewStyle().
	Foreground(TextMuted)
