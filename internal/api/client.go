// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the default backend address for local development.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for API requests. /ask can take
	// a while: the backend fans out to a hosted model.
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps response bodies read into memory.
	maxResponseSize = 4 * 1024 * 1024
)

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource supplies the current bearer credential. The auth bridge is
// the one real implementation; an empty string means anonymous.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-credential TokenSource, used by tests and one-shot
// CLI invocations.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string { return string(s) }

// anonymous is the TokenSource used when none is configured.
type anonymous struct{}

func (anonymous) Token() string { return "" }

// =============================================================================
// CLIENT
// =============================================================================

// Client issues typed requests against the KiloKōkua backend.
//
// The Client is safe for concurrent use. It performs no retries; each
// operation maps to exactly one HTTP round-trip.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string
	verbose    bool
}

// NewClient creates a client for the given base URL. An empty baseURL
// falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     anonymous{},
		userAgent:  "kilokokua-tui/0.1",
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithTokenSource sets the credential supplier.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	if ts == nil {
		ts = anonymous{}
	}
	c.tokens = ts
	return c
}

// WithVerbose enables request/response logging. Only method, path, status
// and duration are logged; never headers or bodies.
func (c *Client) WithVerbose(verbose bool) *Client {
	c.verbose = verbose
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Using returns a copy of the client bound to a different credential.
// The copy shares the HTTP client; the original is not modified, so this
// is safe for concurrent use.
func (c *Client) Using(ts TokenSource) *Client {
	clientCopy := *c
	if ts == nil {
		ts = anonymous{}
	}
	clientCopy.tokens = ts
	return &clientCopy
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Health performs the connectivity probe against GET /health.
//
// A nil error only means the service answered 200; callers must still check
// AIServiceInitialized before treating the backend as usable.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var health HealthResponse
	if err := c.do(req, false, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Ask sends a chat message. sessionID may be empty for a fresh session; the
// returned SessionID is authoritative either way. The current credential is
// attached when present, but anonymous asks are allowed.
func (c *Client) Ask(ctx context.Context, message, sessionID string) (*AskResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	body := AskRequest{Message: message, SessionID: sessionID}
	req, err := c.newRequest(ctx, http.MethodPost, "/ask", body)
	if err != nil {
		return nil, err
	}
	c.attachToken(req)
	var resp AskResponse
	if err := c.do(req, c.tokens.Token() != "", &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, &APIError{Kind: KindDecode, Message: "ask response missing session_id"}
	}
	return &resp, nil
}

// Login exchanges credentials for a bearer token via the OAuth2 password
// flow on POST /token. The request is form-encoded, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" {
		return nil, &APIError{Kind: KindValidation, Message: "username and password are required"}
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	var token Token
	// A 401 here is a bad password on an anonymous call, not an expired
	// credential, so it classifies as HTTPStatus rather than AuthRequired.
	if err := c.do(req, false, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &APIError{Kind: KindDecode, Message: "token response missing access_token"}
	}
	return &token, nil
}

// Register creates a new user account via POST /register.
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	if username == "" || email == "" || password == "" {
		return nil, &APIError{Kind: KindValidation, Message: "username, email and password are required"}
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/register",
		registerRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.do(req, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser fetches the authenticated principal from GET /users/me.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	req, err := c.newAuthedRequest(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.do(req, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListSessions fetches the caller's chat sessions from GET /sessions.
// Requires a credential: anonymous sessions are not listable.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	req, err := c.newAuthedRequest(ctx, http.MethodGet, "/sessions", nil)
	if err != nil {
		return nil, err
	}
	var sessions []Session
	if err := c.do(req, true, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionMessages fetches the ordered transcript of one session from
// GET /sessions/{id}/messages.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]SessionMessage, error) {
	if sessionID == "" {
		return nil, &APIError{Kind: KindValidation, Message: "session id is required"}
	}
	req, err := c.newAuthedRequest(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID)+"/messages", nil)
	if err != nil {
		return nil, err
	}
	var messages []SessionMessage
	if err := c.do(req, true, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// RenameSession updates a session title via PATCH /sessions/{id}.
func (c *Client) RenameSession(ctx context.Context, sessionID, title string) (*Session, error) {
	if sessionID == "" {
		return nil, &APIError{Kind: KindValidation, Message: "session id is required"}
	}
	req, err := c.newAuthedRequest(ctx, http.MethodPatch, "/sessions/"+url.PathEscape(sessionID),
		renameRequest{Title: title})
	if err != nil {
		return nil, err
	}
	var session Session
	if err := c.do(req, true, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes a session via DELETE /sessions/{id}. Any 2xx counts
// as success; the body is ignored.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return &APIError{Kind: KindValidation, Message: "session id is required"}
	}
	req, err := c.newAuthedRequest(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return err
	}
	return c.do(req, true, nil)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// newRequest builds a JSON request without a credential requirement.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Kind: KindUnknown, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// newAuthedRequest builds a request for an owner-only endpoint. Returns
// ErrNoCredential before any network activity when anonymous.
func (c *Client) newAuthedRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if c.tokens.Token() == "" {
		return nil, ErrNoCredential
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	c.attachToken(req)
	return req, nil
}

// attachToken adds the Authorization header when a credential is present.
func (c *Client) attachToken(req *http.Request) {
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do executes the request and decodes a 2xx body into out (out may be nil).
// authed controls whether a 401 classifies as AuthRequired.
func (c *Client) do(req *http.Request, authed bool, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.verbose {
			log.Printf("API request failed: %s %s (%v)", req.Method, req.URL.Path, err)
		}
		return &APIError{Kind: KindNetwork, Message: "backend unreachable", Cause: err}
	}
	defer resp.Body.Close()

	if c.verbose {
		log.Printf("API response: %s %s → %d (%v)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: "failed to read response", Cause: err}
	}
	if int64(len(body)) > maxResponseSize {
		return &APIError{Kind: KindDecode, Message: fmt.Sprintf("response exceeded %d bytes", maxResponseSize)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, authed, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Kind: KindDecode, Message: "failed to parse response", Cause: err}
	}
	return nil
}

// statusError maps a non-2xx response to an APIError.
func (c *Client) statusError(status int, authed bool, body []byte) error {
	var envelope errorBody
	message := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = envelope.message()
	}
	if message == "" {
		message = http.StatusText(status)
	}

	if status == http.StatusUnauthorized && authed {
		return &APIError{Kind: KindAuthRequired, Status: status, Message: message}
	}
	return &APIError{Kind: KindHTTPStatus, Status: status, Message: message}
}
