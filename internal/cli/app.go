// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared command state for the kilokokua CLI handlers.
package cli

import (
	"context"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/auth"
	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/config"
	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
	"github.com/jeranaias/kilokokua-tui/internal/storage"
)

// commandTimeout bounds a single CLI operation. Ask goes through the
// configured request timeout inside the client; this is the outer limit.
const commandTimeout = 2 * time.Minute

// App bundles the assembled client stack for the CLI handlers. main.go
// wires it once and routes the parsed command here.
type App struct {
	Config  *config.Config
	Client  *api.Client
	Bridge  *auth.Bridge
	Monitor *connectivity.Monitor
	Ctrl    *chat.Controller
	Cache   *storage.Cache
}

// NewApp creates the handler state. Cache may be nil when the local
// mirror could not be opened.
func NewApp(cfg *config.Config, client *api.Client, bridge *auth.Bridge, monitor *connectivity.Monitor, ctrl *chat.Controller, cache *storage.Cache) *App {
	return &App{
		Config:  cfg,
		Client:  client,
		Bridge:  bridge,
		Monitor: monitor,
		Ctrl:    ctrl,
		Cache:   cache,
	}
}

// commandContext returns the bounded context used by one-shot commands.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}
