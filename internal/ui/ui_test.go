// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"testing"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
)

func TestConnectivityLabel(t *testing.T) {
	tests := []struct {
		name   string
		status connectivity.Status
		want   string
	}{
		{"connected", connectivity.Status{State: connectivity.StateConnected}, "Connected"},
		{"unknown reads as connecting", connectivity.Status{State: connectivity.StateUnknown}, "Connecting..."},
		{"disconnected", connectivity.Status{State: connectivity.StateDisconnected}, "Disconnected"},
		{"degraded is distinguishable", connectivity.Status{State: connectivity.StateDisconnected, Degraded: true}, "starting up"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectivityLabel(tt.status); !strings.Contains(got, tt.want) {
				t.Errorf("label = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestLoginValidate(t *testing.T) {
	lv := newLoginView()

	if got := lv.validate(); got == "" {
		t.Error("empty form validated")
	}

	lv.username.SetValue("lani")
	lv.password.SetValue("secret")
	if got := lv.validate(); got != "" {
		t.Errorf("login form rejected: %s", got)
	}

	lv.register = true
	lv.email.SetValue("not-an-email")
	if got := lv.validate(); got == "" {
		t.Error("register form accepted a bad email")
	}
	lv.email.SetValue("lani@example.com")
	if got := lv.validate(); got != "" {
		t.Errorf("register form rejected: %s", got)
	}
}

func TestSidebarCursorClamping(t *testing.T) {
	sv := newSidebarView(28)
	sv.refresh([]api.Session{{ID: "a"}, {ID: "b"}, {ID: "c"}}, "a", false)

	sv.moveCursor(10)
	if sv.cursor != 2 {
		t.Errorf("cursor = %d, want clamped to 2", sv.cursor)
	}
	sv.moveCursor(-10)
	if sv.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", sv.cursor)
	}

	// Shrinking the list pulls the cursor back in range.
	sv.moveCursor(2)
	sv.refresh([]api.Session{{ID: "a"}}, "a", false)
	if sv.cursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", sv.cursor)
	}
}

func TestChatViewWelcomeShowsSuggestions(t *testing.T) {
	cv := newChatView(false)
	cv.setSize(80, 24)
	cv.refresh(nil, false)

	out := cv.renderTranscript(nil)
	if !strings.Contains(out, "KiloKōkua") {
		t.Error("welcome missing greeting")
	}
	for _, s := range chat.Suggestions {
		if !strings.Contains(out, s) {
			t.Errorf("welcome missing suggestion %q", s)
		}
	}
}

func TestChatViewRendersOrigins(t *testing.T) {
	cv := newChatView(false)
	cv.setSize(80, 24)

	msgs := []chat.Message{
		{Origin: chat.OriginUser, Content: "a question", Pending: true},
		{Origin: chat.OriginBot, Content: "an answer"},
		{Origin: chat.OriginInfo, Content: "a notice"},
	}
	out := cv.renderTranscript(msgs)

	for _, want := range []string{"You", "(sending)", "a question", "an answer", "a notice"} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
}

func TestShortError(t *testing.T) {
	if got := shortError(&api.APIError{Kind: api.KindHTTPStatus, Status: 500, Message: "boom"}); got != "boom" {
		t.Errorf("shortError = %q, want boom", got)
	}
	if got := shortError(nil); got != "" {
		t.Errorf("shortError(nil) = %q", got)
	}
}
