// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connectivity

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Bubble Tea Integration
// =============================================================================

// StatusMsg carries a completed probe's status into the TUI update loop.
type StatusMsg struct {
	Status Status
}

// PollTickMsg fires when a Disconnected re-probe is due.
type PollTickMsg struct {
	Time time.Time
}

// ProbeCmd runs a synchronous probe and delivers the result as a StatusMsg.
// The UI shows the Unknown intermediate state because the monitor flips to
// Unknown as soon as the probe starts.
func (m *Monitor) ProbeCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Status: m.ProbeSync(ctx)}
	}
}

// PollTickCmd schedules the next poll tick. The update loop calls HandleTick
// when the message arrives.
func (m *Monitor) PollTickCmd() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return PollTickMsg{Time: t}
	})
}

// HandleTick processes a poll tick: re-probe only while Disconnected, and
// always schedule the next tick so the loop survives reconnects.
func (m *Monitor) HandleTick(ctx context.Context) tea.Cmd {
	if m.State() == StateDisconnected {
		return tea.Batch(m.ProbeCmd(ctx), m.PollTickCmd())
	}
	return m.PollTickCmd()
}
