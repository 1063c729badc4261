// kilokokua - The Hawaiʻi Climate AI Concierge in your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/auth"
	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/cli"
	"github.com/jeranaias/kilokokua-tui/internal/config"
	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
	"github.com/jeranaias/kilokokua-tui/internal/storage"
	"github.com/jeranaias/kilokokua-tui/internal/ui"
	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// restoreTimeout bounds the startup token verification round-trip.
const restoreTimeout = 10 * time.Second

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	// Commands that need no backend wiring.
	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	cfg := loadConfig(args)
	styles.ApplyTheme(cfg.UI.Theme)

	app, cache := buildApp(cfg, args)
	if cache != nil {
		defer cache.Close()
	}

	// Restore a stored token so every surface starts with the right
	// identity. An unreachable backend keeps the token for next time.
	restoreCtx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	if err := app.Bridge.Restore(restoreCtx); err != nil && args.Verbose {
		fmt.Fprintf(os.Stderr, "session restore: %v\n", err)
	}
	cancel()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(cfg, app)
	case cli.CmdAsk:
		err = app.HandleAsk(args)
	case cli.CmdChat:
		err = app.HandleChat(args)
	case cli.CmdLogin:
		err = app.HandleLogin(args)
	case cli.CmdLogout:
		err = app.HandleLogout(args)
	case cli.CmdWhoami:
		err = app.HandleWhoami(args)
	case cli.CmdRegister:
		err = app.HandleRegister(args)
	case cli.CmdSessions:
		err = app.HandleSessions(args)
	case cli.CmdStatus:
		err = app.HandleStatus(args)
	default:
		cli.PrintUsage()
		os.Exit(cli.ExitUsageError)
	}

	if err != nil {
		cli.DisplayError(err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

// loadConfig loads ~/.kilokokua/config.toml, falling back to defaults
// when the file is missing or broken, then applies overrides.
func loadConfig(args cli.Args) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		cfg = config.Default()
	}
	cfg.ApplyEnvOverrides()

	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}
	if args.Verbose {
		cfg.API.Verbose = true
	}
	return cfg
}

// buildApp wires the client stack shared by the TUI and the CLI.
func buildApp(cfg *config.Config, args cli.Args) (*cli.App, *storage.Cache) {
	client := api.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.Timeout()).
		WithVerbose(cfg.API.Verbose)

	store, err := auth.NewTokenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "token store: %v (sign-in will not persist)\n", err)
		store = auth.NewTokenStoreAt(filepath.Join(os.TempDir(), ".kilokokua-token"))
	}
	bridge := auth.NewBridge(client, store)
	client.WithTokenSource(bridge)

	monitor := connectivity.NewMonitor(client).
		WithPollInterval(cfg.HealthPollInterval())

	ctrl := chat.NewController(client, bridge, monitor)

	var cache *storage.Cache
	if path, err := storage.DefaultCachePath(); err == nil {
		if cache, err = storage.Open(path); err != nil {
			fmt.Fprintf(os.Stderr, "session cache: %v (offline copies disabled)\n", err)
			cache = nil
		}
	}
	if cache != nil {
		ctrl.WithCache(cache)
	}

	return cli.NewApp(cfg, client, bridge, monitor, ctrl, cache), cache
}

// runTUI starts the Bubble Tea interface.
func runTUI(cfg *config.Config, app *cli.App) error {
	// Re-apply the theme when the config file changes on disk. The
	// watcher is best effort; the TUI runs fine without it.
	if path, err := config.Path(); err == nil {
		if watcher, err := config.NewWatcher(path, func(c *config.Config) {
			styles.ApplyTheme(c.UI.Theme)
		}); err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	model := ui.New(cfg, app.Client, app.Bridge, app.Monitor, app.Ctrl)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
