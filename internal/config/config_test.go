// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFromPath_Missing verifies defaults when no file exists.
func TestLoadFromPath_Missing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, 30*time.Second, cfg.HealthPollInterval())
}

// TestLoadFromPath_PartialFile verifies missing keys fall back to defaults.
func TestLoadFromPath_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[api]\nbase_url = \"https://kilokokua.example.com\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://kilokokua.example.com", cfg.API.BaseURL)
	assert.Equal(t, 60, cfg.API.TimeoutSecs, "timeout should default")
	assert.Equal(t, "auto", cfg.UI.Theme, "theme should default")
}

// TestEnvOverridesFile verifies KILOKOKUA_API_URL wins over the file.
func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://file:8000\"\n"), 0o644))
	t.Setenv("KILOKOKUA_API_URL", "http://env:9000")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.API.BaseURL)
}

// TestValidate verifies rejection of unusable values.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://x" }, true},
		{"no host", func(c *Config) { c.API.BaseURL = "http://" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"light theme ok", func(c *Config) { c.UI.Theme = "light" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestSaveLoadRoundTrip verifies a saved config loads back identically.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.API.HealthPollSecs = 10
	cfg.UI.Theme = "dark"
	require.NoError(t, SaveToPath(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, loaded.API.BaseURL)
	assert.Equal(t, cfg.API.HealthPollSecs, loaded.API.HealthPollSecs)
	assert.Equal(t, cfg.UI.Theme, loaded.UI.Theme)
}

// TestWatcherReloads verifies the watcher picks up an edited file.
func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer watcher.Close()
	require.NoError(t, watcher.Watch())

	updated := Default()
	updated.API.BaseURL = "http://changed:8000"
	require.NoError(t, SaveToPath(updated, path))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "http://changed:8000", cfg.API.BaseURL)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reloaded")
	}
}
