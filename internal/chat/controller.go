// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/auth"
	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
)

// =============================================================================
// Shared copy
// =============================================================================

// Greeting opens an empty conversation.
const Greeting = "Aloha! I'm KiloKōkua, your Hawaiʻi Climate AI Concierge. How can I assist you today with climate information?"

// Suggestions are shown alongside the greeting when the transcript is empty.
var Suggestions = []string{
	"What's the average rainfall on the Big Island in February?",
	"How has sea level changed in Honolulu over the past decade?",
	"What are the current climate trends in Maui?",
}

// Synthesized bot replies. A blocked or failed send always leaves the user's
// message in place and answers with one of these.
const (
	disconnectedReply = "I'm currently unable to connect to my knowledge base. Please check your connection to the backend API."
	sendFailedReply   = "I'm sorry, I encountered an error processing your request. Please try again later."
)

// Controller-level sentinel errors. All caller-side: nothing was sent.
var (
	// ErrSendInProgress rejects a second send while one is outstanding.
	ErrSendInProgress = errors.New("a message is already being sent")

	// ErrDisconnected marks a send blocked before transport because the
	// backend is not connected. The transcript already carries the
	// synthesized bot reply when this is returned.
	ErrDisconnected = errors.New("backend is not connected")

	// ErrEmptyTitle rejects a rename to a blank title.
	ErrEmptyTitle = errors.New("title must not be empty")
)

// =============================================================================
// Controller
// =============================================================================

// SessionCache is the optional local mirror of the server's session list and
// transcripts. Best-effort: cache failures are ignored, server responses
// always overwrite cached state, and nothing read from the cache is ever
// sent back to the backend.
type SessionCache interface {
	PutSessions(owner string, sessions []api.Session) error
	Sessions(owner string) ([]api.Session, error)
	PutTranscript(owner, sessionID string, msgs []api.SessionMessage) error
	Transcript(owner, sessionID string) ([]api.SessionMessage, error)
	RenameSession(owner, sessionID, title string) error
	DeleteSession(owner, sessionID string) error
}

// Controller owns the current session id, the transcript, and the session
// list. Safe for concurrent use. State-changing methods block on the
// network; subscribe to be told when the visible state changes.
type Controller struct {
	client  *api.Client
	bridge  *auth.Bridge
	monitor *connectivity.Monitor
	cache   SessionCache

	mu         sync.Mutex
	sessionID  string
	transcript Transcript
	sessions   []api.Session
	// fromCache marks a session list served from the local mirror while
	// the backend was unreachable.
	fromCache bool
	sending   bool
	// epoch invalidates in-flight work. Bumped whenever the conversation
	// context changes: session select, new session, identity change.
	// Completions compare their recorded epoch and discard themselves
	// when superseded.
	epoch     uint64
	listeners []func()
}

// NewController wires the controller to its collaborators and registers for
// identity changes.
func NewController(client *api.Client, bridge *auth.Bridge, monitor *connectivity.Monitor) *Controller {
	c := &Controller{
		client:  client,
		bridge:  bridge,
		monitor: monitor,
	}
	bridge.Subscribe(c.onIdentityChange)
	return c
}

// WithCache attaches the local session mirror. Call before use.
func (c *Controller) WithCache(cache SessionCache) *Controller {
	c.cache = cache
	return c
}

// Subscribe registers a callback invoked after every visible state change.
// Callbacks run outside the controller's lock.
func (c *Controller) Subscribe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// =============================================================================
// Accessors
// =============================================================================

// SessionID returns the current session id, empty for a fresh session.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Messages returns a copy of the visible transcript.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

// Sessions returns a copy of the session list.
func (c *Controller) Sessions() []api.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// SessionsFromCache reports whether the current session list was served
// from the local mirror rather than the backend.
func (c *Controller) SessionsFromCache() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fromCache
}

// Sending reports whether a send is outstanding.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// =============================================================================
// Send
// =============================================================================

// Send appends the user's message optimistically, performs the round trip,
// and appends the reply. The server-returned session id always replaces the
// local one.
//
// While Disconnected the send is blocked before transport: the user message
// stays, a synthesized bot reply is appended, a re-probe is triggered, and
// ErrDisconnected is returned. A failed round trip likewise keeps the user
// message and appends a synthesized reply before returning the error.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return api.ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInProgress
	}
	epoch := c.epoch
	sid := c.sessionID

	user := newLocalMessage(OriginUser, text)
	user.Pending = true
	userID := c.transcript.Append(user)

	if !c.monitor.Status().CanSend() {
		c.transcript.settle(userID)
		c.transcript.Append(newLocalMessage(OriginBot, disconnectedReply))
		listeners := c.snapshotListenersLocked()
		c.mu.Unlock()

		notifyAll(listeners)
		c.monitor.Retry()
		return ErrDisconnected
	}

	c.sending = true
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)

	resp, err := c.client.Ask(ctx, text, sid)

	c.mu.Lock()
	stale := epoch != c.epoch
	if !stale {
		c.sending = false
		c.transcript.settle(userID)
	}

	if err != nil {
		if !stale {
			c.transcript.Append(newLocalMessage(OriginBot, sendFailedReply))
		}
		listeners = c.snapshotListenersLocked()
		c.mu.Unlock()

		notifyAll(listeners)
		c.monitor.NoteSendFailure(err)
		c.bridge.HandleAuthError(err)
		return err
	}

	adoptedNewSession := !stale && resp.SessionID != sid
	if !stale {
		c.sessionID = resp.SessionID
		c.transcript.Append(newLocalMessage(OriginBot, resp.Reply))
	}
	listeners = c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)

	// A freshly created session should show up in the sidebar.
	if adoptedNewSession && c.bridge.Current().Authenticated() {
		_ = c.RefreshSessions(ctx)
	}
	return nil
}

// =============================================================================
// Session operations
// =============================================================================

// NewSession starts a fresh conversation: no session id, empty transcript.
// Purely local; the backend creates the session on the first send.
func (c *Controller) NewSession() {
	c.mu.Lock()
	c.resetConversationLocked("")
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)
}

// SelectSession makes the given session current and loads its transcript,
// replacing the visible one wholesale. If a newer selection happens while
// the load is in flight, the result of this one is discarded.
func (c *Controller) SelectSession(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	c.resetConversationLocked(sessionID)
	epoch := c.epoch
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)

	owner := c.bridge.Current().Username()
	msgs, err := c.client.SessionMessages(ctx, sessionID)
	if err != nil {
		if c.bridge.HandleAuthError(err) {
			return err
		}
		// Unreachable backend: fall back to the last transcript the
		// local mirror saw, for display only.
		if api.IsNetwork(err) && c.cache != nil && owner != "" {
			if cached, cacheErr := c.cache.Transcript(owner, sessionID); cacheErr == nil && len(cached) > 0 {
				c.applyTranscript(epoch, cached)
			}
		}
		return err
	}

	if !c.applyTranscript(epoch, msgs) {
		return nil
	}
	if c.cache != nil && owner != "" {
		_ = c.cache.PutTranscript(owner, sessionID, msgs)
	}
	return nil
}

// DeleteSession removes a session on the backend and from the list. If it
// was the current session the conversation resets as if NewSession had been
// called.
func (c *Controller) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.client.DeleteSession(ctx, sessionID); err != nil {
		c.bridge.HandleAuthError(err)
		return err
	}

	c.mu.Lock()
	for i, s := range c.sessions {
		if s.ID == sessionID {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			break
		}
	}
	if c.sessionID == sessionID {
		c.resetConversationLocked("")
	}
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)

	if owner := c.bridge.Current().Username(); c.cache != nil && owner != "" {
		_ = c.cache.DeleteSession(owner, sessionID)
	}
	return nil
}

// RenameSession applies the new title optimistically, then confirms with the
// backend. On failure the previous title is restored; on success the
// server's normalized copy of the session replaces the optimistic one.
func (c *Controller) RenameSession(ctx context.Context, sessionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	c.mu.Lock()
	previous, hadEntry := "", false
	for i := range c.sessions {
		if c.sessions[i].ID == sessionID {
			previous, hadEntry = c.sessions[i].Title, true
			c.sessions[i].Title = title
			break
		}
	}
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	if hadEntry {
		notifyAll(listeners)
	}

	updated, err := c.client.RenameSession(ctx, sessionID, title)
	if err != nil {
		if hadEntry {
			c.mu.Lock()
			for i := range c.sessions {
				if c.sessions[i].ID == sessionID {
					c.sessions[i].Title = previous
					break
				}
			}
			listeners = c.snapshotListenersLocked()
			c.mu.Unlock()
			notifyAll(listeners)
		}
		c.bridge.HandleAuthError(err)
		return err
	}

	c.mu.Lock()
	for i := range c.sessions {
		if c.sessions[i].ID == sessionID {
			c.sessions[i] = *updated
			break
		}
	}
	listeners = c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)

	if owner := c.bridge.Current().Username(); c.cache != nil && owner != "" {
		_ = c.cache.RenameSession(owner, sessionID, updated.Title)
	}
	return nil
}

// RefreshSessions reloads the session list from the backend. Anonymous
// identities have no list; it clears instead. When the backend is
// unreachable the local mirror's copy is shown, marked as cached.
func (c *Controller) RefreshSessions(ctx context.Context) error {
	ident := c.bridge.Current()
	if !ident.Authenticated() {
		c.mu.Lock()
		c.sessions = nil
		c.fromCache = false
		listeners := c.snapshotListenersLocked()
		c.mu.Unlock()
		notifyAll(listeners)
		return nil
	}

	list, err := c.client.ListSessions(ctx)
	if err != nil {
		if c.bridge.HandleAuthError(err) {
			return err
		}
		if api.IsNetwork(err) && c.cache != nil {
			if cached, cacheErr := c.cache.Sessions(ident.Username()); cacheErr == nil {
				c.mu.Lock()
				c.sessions = cached
				c.fromCache = true
				listeners := c.snapshotListenersLocked()
				c.mu.Unlock()
				notifyAll(listeners)
			}
		}
		return err
	}

	c.mu.Lock()
	c.sessions = list
	c.fromCache = false
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)

	if c.cache != nil {
		_ = c.cache.PutSessions(ident.Username(), list)
	}
	return nil
}

// =============================================================================
// Identity changes
// =============================================================================

// onIdentityChange reacts to login, logout, and forced logout. The
// conversation always resets: anonymous sessions are not migrated and a
// departing identity's sessions must not leak. If a login discarded an
// active anonymous conversation, a one-time notice says so.
func (c *Controller) onIdentityChange(ident auth.Identity) {
	c.mu.Lock()
	discarded := c.sessionID != "" || c.transcript.HasConversation()
	c.resetConversationLocked("")
	c.sessions = nil
	c.fromCache = false
	if ident.Authenticated() && discarded {
		notice := fmt.Sprintf("Signed in as %s. Your previous conversation isn't linked to this account, so we've started a fresh one.", ident.Username())
		c.transcript.Append(newLocalMessage(OriginInfo, notice))
	}
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)

	if ident.Authenticated() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = c.RefreshSessions(ctx)
	}
}

// =============================================================================
// Internals
// =============================================================================

// resetConversationLocked switches the conversation context and invalidates
// all in-flight work. Caller holds c.mu.
func (c *Controller) resetConversationLocked(sessionID string) {
	c.epoch++
	c.sending = false
	c.sessionID = sessionID
	c.transcript.Clear()
}

// applyTranscript installs a loaded transcript if the conversation context
// has not moved on. Reports whether the result was applied.
func (c *Controller) applyTranscript(epoch uint64, msgs []api.SessionMessage) bool {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return false
	}
	c.transcript.Replace(msgs)
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()
	notifyAll(listeners)
	return true
}

func (c *Controller) snapshotListenersLocked() []func() {
	out := make([]func(), len(c.listeners))
	copy(out, c.listeners)
	return out
}

func notifyAll(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
