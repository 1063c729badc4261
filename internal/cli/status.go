// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Connectivity status command for the kilokokua CLI.
//
// Command: status
// Short:   Probe backend connectivity
// Aliases: s
//
// Examples:
//   kilokokua status              Probe and show backend status
//   kilokokua status --json       Status in JSON format
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
)

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	APIURL        string `json:"api_url"`
	State         string `json:"state"`
	Degraded      bool   `json:"degraded"`
	CheckedAt     string `json:"checked_at,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	CachePath     string `json:"cache_path,omitempty"`
}

// HandleStatus handles the "status" command with a fresh probe.
func (a *App) HandleStatus(args Args) error {
	ctx, cancel := commandContext()
	defer cancel()

	st := a.Monitor.ProbeSync(ctx)
	ident := a.Bridge.Current()

	if args.JSON {
		out := statusOutput{
			APIURL:        a.Client.BaseURL(),
			State:         st.State.String(),
			Degraded:      st.Degraded,
			Authenticated: ident.Authenticated(),
			Username:      ident.Username(),
		}
		if !st.CheckedAt.IsZero() {
			out.CheckedAt = st.CheckedAt.Format(time.RFC3339)
		}
		if a.Cache != nil {
			out.CachePath = a.Cache.Path()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("KiloKōkua Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n", infoStyle.Render("Backend:"), a.Client.BaseURL())
	fmt.Printf("  %s %s\n", infoStyle.Render("State:  "), connectivityWord(st))
	if st.Degraded {
		fmt.Printf("  %s %s\n", infoStyle.Render("Note:   "),
			warningStyle.Render("reachable, AI service not yet initialized"))
	}
	if !st.CheckedAt.IsZero() {
		fmt.Printf("  %s %s\n", infoStyle.Render("Checked:"),
			st.CheckedAt.Format("2006-01-02 15:04:05"))
	}

	if ident.Authenticated() {
		fmt.Printf("  %s %s\n", infoStyle.Render("Account:"), commandStyle.Render(ident.Username()))
	} else {
		fmt.Printf("  %s anonymous\n", infoStyle.Render("Account:"))
	}
	if a.Cache != nil {
		fmt.Printf("  %s %s\n", infoStyle.Render("Cache:  "), a.Cache.Path())
	}

	fmt.Println()
	if st.State == connectivity.StateDisconnected && !st.Degraded {
		fmt.Println(infoStyle.Render("The backend API is unreachable. Is it running?"))
		fmt.Println()
	}
	return nil
}
