// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// TestTruncateRunes verifies rune-safe truncation with ellipsis.
func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{"short string unchanged", "aloha", 10, "aloha"},
		{"exact length unchanged", "aloha", 5, "aloha"},
		{"truncated with ellipsis", "aloha kakahiaka", 8, "aloha..."},
		{"tiny max, no ellipsis", "aloha", 2, "al"},
		{"zero max", "aloha", 0, ""},
		{"multibyte safe", "ʻōlelo Hawaiʻi", 9, "ʻōlelo..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.input, tc.maxRunes); got != tc.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, expected %q", tc.input, tc.maxRunes, got, tc.expected)
			}
		})
	}
}

// TestTruncateWidth verifies display-width truncation for wide characters.
func TestTruncateWidth(t *testing.T) {
	// Each CJK char is 2 columns wide.
	if got := TruncateWidth("気候変動です", 7); StringWidth(got) > 7 {
		t.Errorf("TruncateWidth produced width %d > 7: %q", StringWidth(got), got)
	}
	if got := TruncateWidth("rain", 10); got != "rain" {
		t.Errorf("short string should be unchanged, got %q", got)
	}
	if got := TruncateWidth("rain", 0); got != "" {
		t.Errorf("zero width should give empty string, got %q", got)
	}
}

// TestPadWidth verifies padding to a display width.
func TestPadWidth(t *testing.T) {
	if got := PadWidth("ab", 5); got != "ab   " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := PadWidth("abcdef", 3); got != "abcdef" {
		t.Errorf("over-width string should be unchanged, got %q", got)
	}
}

// TestCollapseWhitespace verifies newline flattening for one-line previews.
func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("a\r\nb\nc"); got != "a b c" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}

// TestAtomicWriteFile verifies the write lands complete and replaces the
// previous content.
func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	if err := AtomicWriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, expected %q", data, "second")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %v, expected 0600", info.Mode().Perm())
	}

	// No temp droppings left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if e.Name() != "config.toml" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}
