// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/auth"
	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/config"
	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args defaults to TUI", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "how", "much", "rain"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"login", []string{"login", "lani"}, CmdLogin},
		{"logout", []string{"logout"}, CmdLogout},
		{"whoami", []string{"whoami"}, CmdWhoami},
		{"register", []string{"register"}, CmdRegister},
		{"signup alias", []string{"signup"}, CmdRegister},
		{"sessions", []string{"sessions", "list"}, CmdSessions},
		{"session alias", []string{"session", "list"}, CmdSessions},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"version", []string{"version"}, CmdVersion},
		{"help", []string{"--help"}, CmdHelp},
		{"bare question falls through to ask", []string{"what", "is", "el", "niño?"}, CmdAsk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := Parse(tt.argv)
			if cmd != tt.want {
				t.Errorf("Parse(%v) = %v, want %v", tt.argv, cmd, tt.want)
			}
		})
	}
}

func TestParseAskJoinsQuery(t *testing.T) {
	cmd, args := Parse([]string{"ask", "rainfall", "on", "the", "Big", "Island"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "rainfall on the Big Island" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseBareQuestionKeepsFirstWord(t *testing.T) {
	_, args := Parse([]string{"what", "is", "ENSO"})
	if args.Query != "what is ENSO" {
		t.Errorf("Query = %q, want full question including leading word", args.Query)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := Parse([]string{"--json", "-q", "--api-url", "http://example.test:8000", "status"})
	if cmd != CmdStatus {
		t.Fatalf("cmd = %v, want CmdStatus", cmd)
	}
	if !args.JSON || !args.Quiet {
		t.Errorf("flags not parsed: %+v", args)
	}
	if args.APIURL != "http://example.test:8000" {
		t.Errorf("APIURL = %q", args.APIURL)
	}
}

func TestParseAPIURLEqualsForm(t *testing.T) {
	_, args := Parse([]string{"--api-url=http://other.test", "status"})
	if args.APIURL != "http://other.test" {
		t.Errorf("APIURL = %q", args.APIURL)
	}
}

func TestParseSessionSubcommands(t *testing.T) {
	tests := []struct {
		name   string
		argv   []string
		sub    string
		id     string
		title  string
		format string
		output string
	}{
		{"bare sessions lists", []string{"sessions"}, "list", "", "", "", ""},
		{"show with id", []string{"sessions", "show", "42f1"}, "show", "42f1", "", "", ""},
		{"rename joins title words", []string{"sessions", "rename", "42f1", "Rainfall", "research"}, "rename", "42f1", "Rainfall research", "", ""},
		{"export flags", []string{"sessions", "export", "42f1", "--format", "json", "--output", "out.json"}, "export", "42f1", "", "json", "out.json"},
		{"export equals form", []string{"sessions", "export", "42f1", "--format=md"}, "export", "42f1", "", "md", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, args := Parse(tt.argv)
			if args.Subcommand != tt.sub || args.SessionID != tt.id || args.Title != tt.title ||
				args.Format != tt.format || args.Output != tt.output {
				t.Errorf("parsed %+v", args)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", newUsageError("bad usage"), ExitUsageError},
		{"auth required", api.ErrAuthRequired, ExitAuthError},
		{"network", api.ErrUnreachable, ExitNetworkError},
		{"disconnected send", chat.ErrDisconnected, ExitNetworkError},
		{"empty message", api.ErrEmptyMessage, ExitUsageError},
		{"not found", &api.APIError{Kind: api.KindHTTPStatus, Status: 404, Message: "gone"}, ExitNotFound},
		{"anything else", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFormatSessionList(t *testing.T) {
	at := func(s string) api.Timestamp {
		ts, err := time.Parse("2006-01-02 15:04", s)
		if err != nil {
			t.Fatalf("bad fixture time: %v", err)
		}
		return api.Timestamp{Time: ts}
	}

	sessions := []api.Session{
		{ID: "42f1aa90", Title: "Rainfall research", LastMessageAt: at("2024-06-01 10:05")},
		{ID: "9be20c14", Title: ""},
	}

	out := FormatSessionList(sessions, false)
	if !strings.Contains(out, "42f1aa90") {
		t.Error("missing first session id")
	}
	if !strings.Contains(out, "Rainfall research") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "New Chat") {
		t.Error("untitled session should fall back to New Chat")
	}
	if !strings.Contains(out, "2024-06-01 10:05") {
		t.Error("missing last activity timestamp")
	}
	if !strings.Contains(out, "Total: 2 conversation(s)") {
		t.Error("missing summary line")
	}
	if strings.Contains(out, "offline copy") {
		t.Error("offline marker should not appear for a live list")
	}
}

func TestFormatSessionListOfflineAndEmpty(t *testing.T) {
	if out := FormatSessionList(nil, false); !strings.Contains(out, "No saved conversations") {
		t.Errorf("empty list output = %q", out)
	}
	out := FormatSessionList([]api.Session{{ID: "abc"}}, true)
	if !strings.Contains(out, "(offline copy)") {
		t.Error("cached list should be marked as offline copy")
	}
}

// newTestApp builds an App against an unreachable backend, enough for
// commands that never touch the network.
func newTestApp(t *testing.T) *App {
	t.Helper()
	client := api.NewClient("http://127.0.0.1:1")
	bridge := auth.NewBridge(client, auth.NewTokenStoreAt(filepath.Join(t.TempDir(), "token")))
	client.WithTokenSource(bridge)
	monitor := connectivity.NewMonitor(client)
	ctrl := chat.NewController(client, bridge, monitor)
	return NewApp(config.Default(), client, bridge, monitor, ctrl, nil)
}

func TestSlashCommandDispatch(t *testing.T) {
	app := newTestApp(t)

	keepGoing, err := app.handleSlashCommand("/quit")
	if keepGoing || err != nil {
		t.Errorf("/quit = (%v, %v), want (false, nil)", keepGoing, err)
	}

	keepGoing, err = app.handleSlashCommand("/bogus")
	if !keepGoing || err == nil {
		t.Errorf("/bogus = (%v, %v), want an error that keeps the loop going", keepGoing, err)
	}

	keepGoing, err = app.handleSlashCommand("/new")
	if !keepGoing || err != nil {
		t.Errorf("/new = (%v, %v)", keepGoing, err)
	}
	if app.Ctrl.SessionID() != "" || len(app.Ctrl.Messages()) != 0 {
		t.Error("/new should reset the conversation")
	}

	if _, err = app.handleSlashCommand("/switch"); err == nil {
		t.Error("/switch without an id should be a usage error")
	}
	if _, err = app.handleSlashCommand("/rename"); err == nil {
		t.Error("/rename without a title should be a usage error")
	}
	if _, err = app.handleSlashCommand("/export"); err == nil {
		t.Error("/export with an empty transcript should be rejected")
	}
}

func TestLastBotReply(t *testing.T) {
	msgs := []chat.Message{
		{Origin: chat.OriginUser, Content: "q1"},
		{Origin: chat.OriginBot, Content: "a1"},
		{Origin: chat.OriginUser, Content: "q2"},
		{Origin: chat.OriginBot, Content: "a2"},
		{Origin: chat.OriginInfo, Content: "notice"},
	}
	if got := lastBotReply(msgs); got != "a2" {
		t.Errorf("lastBotReply = %q, want a2", got)
	}
	if got := lastBotReply(nil); got != "" {
		t.Errorf("lastBotReply(nil) = %q", got)
	}
}
