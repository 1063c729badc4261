// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/kilokokua-tui/internal/config"
	"github.com/jeranaias/kilokokua-tui/internal/util"
)

// =============================================================================
// TOKEN STORE
// =============================================================================

// TokenStore persists the bearer token across restarts.
//
// The token lives in its own file (~/.kilokokua/token, mode 0600) rather
// than in the config file, so sharing a config never shares a credential.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store at the default path.
func NewTokenStore() (*TokenStore, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return &TokenStore{path: filepath.Join(dir, "token")}, nil
}

// NewTokenStoreAt creates a store at an explicit path, used by tests.
func NewTokenStoreAt(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the persisted token, or "" when none is stored.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token atomically with owner-only permissions.
func (s *TokenStore) Save(token string) error {
	return util.AtomicWriteFile(s.path, []byte(token+"\n"), 0o600)
}

// Clear removes the persisted token. A missing file is not an error.
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
