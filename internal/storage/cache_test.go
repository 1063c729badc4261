// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/api"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func ts(s string) api.Timestamp {
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return api.Timestamp{Time: parsed}
}

func sampleSessions() []api.Session {
	return []api.Session{
		{ID: "sess-2", Title: "Sea level", CreatedAt: ts("2024-06-02T10:00:00Z"), UpdatedAt: ts("2024-06-02T10:00:00Z"), LastMessageAt: ts("2024-06-02T11:00:00Z")},
		{ID: "sess-1", Title: "", CreatedAt: ts("2024-06-01T10:00:00Z"), UpdatedAt: ts("2024-06-01T10:00:00Z"), LastMessageAt: ts("2024-06-01T11:00:00Z")},
	}
}

func TestSessionListRoundTrip(t *testing.T) {
	c := openTestCache(t)
	want := sampleSessions()

	if err := c.PutSessions("lani", want); err != nil {
		t.Fatalf("PutSessions: %v", err)
	}
	got, err := c.Sessions("lani")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("position %d: id = %q, want %q (server order must survive)", i, got[i].ID, want[i].ID)
		}
		if got[i].Title != want[i].Title {
			t.Errorf("position %d: title = %q, want %q", i, got[i].Title, want[i].Title)
		}
		if !got[i].LastMessageAt.Equal(want[i].LastMessageAt.Time) {
			t.Errorf("position %d: last_message_at = %v, want %v", i, got[i].LastMessageAt, want[i].LastMessageAt)
		}
	}
}

func TestPutSessionsReplacesList(t *testing.T) {
	c := openTestCache(t)
	if err := c.PutSessions("lani", sampleSessions()); err != nil {
		t.Fatalf("PutSessions: %v", err)
	}

	if err := c.PutSessions("lani", []api.Session{{ID: "sess-3", Title: "Trade winds"}}); err != nil {
		t.Fatalf("second PutSessions: %v", err)
	}

	got, err := c.Sessions("lani")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(got) != 1 || got[0].ID != "sess-3" {
		t.Errorf("sessions = %+v, want only sess-3", got)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	c := openTestCache(t)
	if err := c.PutSessions("lani", sampleSessions()); err != nil {
		t.Fatalf("PutSessions: %v", err)
	}
	if err := c.PutSessions("keola", []api.Session{{ID: "other-1", Title: "Vog"}}); err != nil {
		t.Fatalf("PutSessions keola: %v", err)
	}

	lani, _ := c.Sessions("lani")
	keola, _ := c.Sessions("keola")
	if len(lani) != 2 || len(keola) != 1 {
		t.Errorf("lani=%d keola=%d sessions, want 2 and 1", len(lani), len(keola))
	}
}

func TestRenameMirrored(t *testing.T) {
	c := openTestCache(t)
	if err := c.PutSessions("lani", sampleSessions()); err != nil {
		t.Fatalf("PutSessions: %v", err)
	}

	if err := c.RenameSession("lani", "sess-1", "Rainfall history"); err != nil {
		t.Fatalf("RenameSession: %v", err)
	}

	got, _ := c.Sessions("lani")
	for _, s := range got {
		if s.ID == "sess-1" && s.Title != "Rainfall history" {
			t.Errorf("title = %q, want renamed", s.Title)
		}
	}
}

func TestDeleteMirroredWithTranscript(t *testing.T) {
	c := openTestCache(t)
	if err := c.PutSessions("lani", sampleSessions()); err != nil {
		t.Fatalf("PutSessions: %v", err)
	}
	msgs := []api.SessionMessage{
		{ID: 1, Content: "aloha", IsUser: true, CreatedAt: ts("2024-06-01T10:00:00Z")},
	}
	if err := c.PutTranscript("lani", "sess-1", msgs); err != nil {
		t.Fatalf("PutTranscript: %v", err)
	}

	if err := c.DeleteSession("lani", "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	got, _ := c.Sessions("lani")
	for _, s := range got {
		if s.ID == "sess-1" {
			t.Error("deleted session still cached")
		}
	}
	transcript, err := c.Transcript("lani", "sess-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(transcript) != 0 {
		t.Error("deleted session's transcript still cached")
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	c := openTestCache(t)
	want := []api.SessionMessage{
		{ID: 1, Content: "what about vog?", IsUser: true, CreatedAt: ts("2024-06-01T10:00:00Z")},
		{ID: 2, Content: "Vog is volcanic smog.", IsUser: false, CreatedAt: ts("2024-06-01T10:00:05Z")},
	}

	if err := c.PutTranscript("lani", "sess-1", want); err != nil {
		t.Fatalf("PutTranscript: %v", err)
	}
	got, err := c.Transcript("lani", "sess-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Content != want[i].Content || got[i].IsUser != want[i].IsUser {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTranscriptNeverLoadedIsEmpty(t *testing.T) {
	c := openTestCache(t)
	got, err := c.Transcript("lani", "unseen")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d messages for a session never cached", len(got))
	}
}

func TestClosedCacheRejectsOperations(t *testing.T) {
	c := openTestCache(t)
	c.Close()

	if err := c.PutSessions("lani", nil); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("PutSessions after close = %v, want ErrCacheClosed", err)
	}
	if _, err := c.Sessions("lani"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Sessions after close = %v, want ErrCacheClosed", err)
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.PutSessions("lani", sampleSessions()); err != nil {
		t.Fatalf("PutSessions: %v", err)
	}
	c.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Sessions("lani")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d sessions after reopen, want 2", len(got))
	}
}
