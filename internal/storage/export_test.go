// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleExport() *ExportConversation {
	return &ExportConversation{
		SessionID:  "sess-1",
		Title:      "Rainfall",
		ExportedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Messages: []ExportMessage{
			{Role: "user", Content: "How much rain does Hilo get?", CreatedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
			{Role: "assistant", Content: "Around 3200mm a year.", CreatedAt: time.Date(2024, 6, 1, 10, 0, 5, 0, time.UTC)},
		},
	}
}

func TestExportMarkdown(t *testing.T) {
	md := sampleExport().Markdown()

	for _, want := range []string{
		"# Rainfall",
		"Session: sess-1",
		"**You**",
		"**KiloKōkua**",
		"How much rain does Hilo get?",
		"Around 3200mm a year.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdownUntitled(t *testing.T) {
	conv := sampleExport()
	conv.Title = ""
	if !strings.Contains(conv.Markdown(), "# KiloKōkua conversation") {
		t.Error("untitled export missing fallback heading")
	}
}

func TestExportJSON(t *testing.T) {
	data, err := sampleExport().JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var back ExportConversation
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.SessionID != "sess-1" || len(back.Messages) != 2 {
		t.Errorf("round trip lost data: %+v", back)
	}
	if back.Messages[0].Role != "user" {
		t.Errorf("first message role = %q", back.Messages[0].Role)
	}
}

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := WriteExport(path, []byte("# hello\n")); err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "# hello\n" {
		t.Errorf("content = %q", data)
	}
}
