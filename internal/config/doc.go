// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// kilokokua-tui.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides:
//
//   - ~/.kilokokua/config.toml
//   - Built-in defaults
//
// Environment overrides (highest precedence):
//
//   - KILOKOKUA_API_URL: backend base URL
//
// The Watcher type optionally reloads the file on change via fsnotify so a
// running TUI picks up an edited backend URL without a restart.
package config
