// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status               string `json:"status"`
	AIServiceInitialized bool   `json:"ai_service_initialized"`
}

// AskRequest is the body of POST /ask.
//
// SessionID is omitted entirely for a fresh session. The field is never the
// literal "null" or "undefined"; those sentinels were a defect in an older
// client and the backend treats them as real ids.
type AskRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse is the body returned by POST /ask. SessionID is always set:
// it echoes the request id or carries the id of a freshly created session.
type AskResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

// Token is the body returned by POST /token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the record returned by GET /users/me and POST /register.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Session is one entry of GET /sessions.
type Session struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
	LastMessageAt Timestamp `json:"last_message_at"`
}

// DisplayTitle returns the session title, falling back to "New Chat" for
// sessions that were never renamed.
func (s Session) DisplayTitle() string {
	if strings.TrimSpace(s.Title) == "" {
		return "New Chat"
	}
	return s.Title
}

// SessionMessage is one entry of GET /sessions/{id}/messages, ordered by
// the server.
type SessionMessage struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	CreatedAt Timestamp `json:"created_at"`
}

// registerRequest is the body of POST /register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// renameRequest is the body of PATCH /sessions/{id}.
type renameRequest struct {
	Title string `json:"title"`
}

// errorBody is the backend's error envelope. Detail is usually a string but
// validation failures carry a structured list, hence the interface type.
type errorBody struct {
	Detail any `json:"detail"`
}

func (e errorBody) message() string {
	switch d := e.Detail.(type) {
	case string:
		return d
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", d)
	}
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// Timestamp wraps time.Time to accept the backend's timestamp formats.
// The backend emits naive ISO-8601 timestamps without a zone offset, which
// the stock time.Time decoder rejects.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order when decoding.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("unsupported timestamp %q: %w", s, lastErr)
}

// MarshalJSON implements json.Marshaler using RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}
