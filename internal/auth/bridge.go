// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/jeranaias/kilokokua-tui/internal/api"
)

// =============================================================================
// IDENTITY
// =============================================================================

// Identity is the current principal plus its credential. The zero value is
// anonymous.
type Identity struct {
	Token string
	User  *api.User
}

// Authenticated reports whether a verified principal is present.
func (id Identity) Authenticated() bool {
	return id.Token != "" && id.User != nil
}

// Username returns the principal's name, or "" when anonymous.
func (id Identity) Username() string {
	if id.User == nil {
		return ""
	}
	return id.User.Username
}

// Listener observes identity transitions: login, logout, forced logout.
type Listener func(Identity)

// =============================================================================
// AUTH BRIDGE
// =============================================================================

// Bridge owns identity state. It implements api.TokenSource so the API
// client always sees the current credential without holding a copy.
type Bridge struct {
	client *api.Client
	store  *TokenStore // nil disables persistence

	mu        sync.RWMutex
	identity  Identity
	listeners []Listener
}

// NewBridge creates a bridge backed by client. store may be nil for
// one-shot CLI use where nothing should be persisted.
func NewBridge(client *api.Client, store *TokenStore) *Bridge {
	return &Bridge{client: client, store: store}
}

// Token implements api.TokenSource.
func (b *Bridge) Token() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.identity.Token
}

// Current returns the current identity.
func (b *Bridge) Current() Identity {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.identity
}

// Subscribe registers a listener for identity changes. The listener is
// called after the transition is committed, outside the bridge's lock.
func (b *Bridge) Subscribe(fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Login exchanges credentials for a token, verifies it against /users/me
// and commits the new identity. Nothing is committed on failure.
func (b *Bridge) Login(ctx context.Context, username, password string) (Identity, error) {
	token, err := b.client.Login(ctx, username, password)
	if err != nil {
		return Identity{}, err
	}

	// Verify the token and fetch the principal before committing, so a
	// half-working token never becomes the ambient credential.
	user, err := b.client.Using(api.StaticToken(token.AccessToken)).CurrentUser(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("login verification failed: %w", err)
	}

	identity := Identity{Token: token.AccessToken, User: user}
	b.commit(identity)
	if b.store != nil {
		if err := b.store.Save(token.AccessToken); err != nil {
			// Persistence failure downgrades to a session-only login.
			return identity, nil
		}
	}
	return identity, nil
}

// Register creates an account. It does not log in; callers chain Login.
func (b *Bridge) Register(ctx context.Context, username, email, password string) (*api.User, error) {
	return b.client.Register(ctx, username, email, password)
}

// Logout clears the identity and the persisted credential.
func (b *Bridge) Logout() {
	b.mu.Lock()
	wasAnonymous := b.identity == Identity{}
	b.identity = Identity{}
	listeners := b.snapshotListenersLocked()
	b.mu.Unlock()

	if b.store != nil {
		b.store.Clear()
	}
	if !wasAnonymous {
		notify(listeners, Identity{})
	}
}

// HandleAuthError routes a 401 from any call site into the forced-logout
// path. Any other error is left for the caller. Returns true when a forced
// logout happened.
func (b *Bridge) HandleAuthError(err error) bool {
	if !api.IsAuthRequired(err) {
		return false
	}
	b.Logout()
	return true
}

// Restore loads a persisted token and validates it with /users/me. An
// invalid or expired token is discarded silently; network trouble keeps
// the token (the backend may just be down).
func (b *Bridge) Restore(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	token, err := b.store.Load()
	if err != nil || token == "" {
		return err
	}

	user, err := b.client.Using(api.StaticToken(token)).CurrentUser(ctx)
	switch {
	case err == nil:
		b.commit(Identity{Token: token, User: user})
		return nil
	case api.IsAuthRequired(err):
		b.store.Clear()
		return nil
	default:
		// Unreachable backend: keep the token, stay anonymous for now.
		return err
	}
}

// Refresh re-fetches the principal for the current token. A 401 forces
// logout.
func (b *Bridge) Refresh(ctx context.Context) error {
	if b.Token() == "" {
		return nil
	}
	user, err := b.client.CurrentUser(ctx)
	if err != nil {
		b.HandleAuthError(err)
		return err
	}

	b.mu.Lock()
	if b.identity.Token != "" {
		b.identity.User = user
	}
	b.mu.Unlock()
	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// commit installs a new identity and notifies listeners outside the lock.
func (b *Bridge) commit(identity Identity) {
	b.mu.Lock()
	b.identity = identity
	listeners := b.snapshotListenersLocked()
	b.mu.Unlock()
	notify(listeners, identity)
}

func (b *Bridge) snapshotListenersLocked() []Listener {
	out := make([]Listener, len(b.listeners))
	copy(out, b.listeners)
	return out
}

func notify(listeners []Listener, identity Identity) {
	for _, fn := range listeners {
		fn(identity)
	}
}
