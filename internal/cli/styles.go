// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for CLI output.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

var (
	// Prompt style for the chat REPL
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Ocean).
			Bold(true)

	// Info style for labels and hints
	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// Command style for command names and success markers
	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// Warning style
	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// Section header style
	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	// Bot reply label
	botLabelStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)
)
