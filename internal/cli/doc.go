// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the plain (non-TUI) subcommands of kilokokua.
//
// The TUI is the default entry point; everything here exists for scripted
// use and for people who prefer a line-oriented workflow. Commands drive
// the same internal packages as the TUI (chat.Controller, auth.Bridge,
// connectivity.Monitor), so the transcript and connectivity rules are
// identical in both surfaces.
//
// # Key Types
//
//   - Command: parsed subcommand identifier returned by Parse
//   - Args: global and command-specific flags
//   - App: the assembled client stack the handlers operate on
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	app := cli.NewApp(cfg, client, bridge, monitor, ctrl, cache)
//	switch cmd {
//	case cli.CmdAsk:
//	    err = app.HandleAsk(args)
//	...
package cli
