// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Session management commands for the kilokokua CLI.
//
// Command: sessions [subcommand]
// Aliases: session
//
// Examples:
//   kilokokua sessions list
//   kilokokua sessions show 42f1
//   kilokokua sessions rename 42f1 "Rainfall research"
//   kilokokua sessions delete 42f1
//   kilokokua sessions export 42f1 --format md --output rainfall.md
//
// Session ids may be abbreviated to any unique prefix.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/storage"
	"github.com/jeranaias/kilokokua-tui/internal/util"
)

// idColumnWidth is the printed width of abbreviated session ids.
const idColumnWidth = 8

// HandleSessions routes the "sessions" subcommands.
func (a *App) HandleSessions(args Args) error {
	if !a.Bridge.Current().Authenticated() {
		return newUsageError("sessions require an account; run: kilokokua login")
	}

	switch args.Subcommand {
	case "list", "ls", "l", "":
		return a.handleSessionList(args)
	case "show":
		return a.handleSessionShow(args)
	case "rename":
		return a.handleSessionRename(args)
	case "delete", "rm":
		return a.handleSessionDelete(args)
	case "export":
		return a.handleSessionExport(args)
	default:
		return newUsageError("unknown sessions subcommand: %s (try list, show, rename, delete, export)", args.Subcommand)
	}
}

// handleSessionList lists the account's conversations.
func (a *App) handleSessionList(args Args) error {
	ctx, cancel := commandContext()
	defer cancel()

	if err := a.Ctrl.RefreshSessions(ctx); err != nil {
		return err
	}
	sessions := a.Ctrl.Sessions()

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"sessions":   sessions,
			"count":      len(sessions),
			"from_cache": a.Ctrl.SessionsFromCache(),
		})
	}

	fmt.Print(FormatSessionList(sessions, a.Ctrl.SessionsFromCache()))
	return nil
}

// FormatSessionList renders the session table shown by "sessions list".
func FormatSessionList(sessions []api.Session, fromCache bool) string {
	var sb strings.Builder
	sb.WriteString("\n")

	if len(sessions) == 0 {
		sb.WriteString("No saved conversations.\n\n")
		sb.WriteString("Conversations are saved automatically while you are signed in.\n\n")
		return sb.String()
	}

	sb.WriteString("Your Conversations")
	if fromCache {
		sb.WriteString(" (offline copy)")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 64) + "\n\n")

	sb.WriteString(util.PadWidth("ID", idColumnWidth+2))
	sb.WriteString(util.PadWidth("Title", 34))
	sb.WriteString("Last activity\n")
	sb.WriteString(strings.Repeat("-", 64) + "\n")

	for _, s := range sessions {
		sb.WriteString(util.PadWidth(shortID(s.ID), idColumnWidth+2))
		sb.WriteString(util.PadWidth(util.TruncateWidth(s.DisplayTitle(), 32), 34))
		if s.LastMessageAt.IsZero() {
			sb.WriteString("-")
		} else {
			sb.WriteString(s.LastMessageAt.Format("2006-01-02 15:04"))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total: %d conversation(s)\n\n", len(sessions)))
	return sb.String()
}

// handleSessionShow prints one conversation transcript.
func (a *App) handleSessionShow(args Args) error {
	ctx, cancel := commandContext()
	defer cancel()

	session, err := a.resolveSession(ctx, args.SessionID)
	if err != nil {
		return err
	}

	msgs, err := a.Client.SessionMessages(ctx, session.ID)
	if err != nil {
		a.Bridge.HandleAuthError(err)
		return err
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"session":  session,
			"messages": msgs,
		})
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(session.DisplayTitle()))
	fmt.Println(infoStyle.Render("Session " + session.ID))
	fmt.Println()

	for _, msg := range msgs {
		label := botLabelStyle.Render("KiloKōkua")
		if msg.IsUser {
			label = promptStyle.Render("You")
		}
		stamp := ""
		if !msg.CreatedAt.IsZero() {
			stamp = infoStyle.Render(" (" + msg.CreatedAt.Format("2006-01-02 15:04") + ")")
		}
		fmt.Printf("%s%s:\n%s\n\n", label, stamp, msg.Content)
	}
	return nil
}

// handleSessionRename renames a conversation.
func (a *App) handleSessionRename(args Args) error {
	if strings.TrimSpace(args.Title) == "" {
		return newUsageError("usage: kilokokua sessions rename <id> <title>")
	}

	ctx, cancel := commandContext()
	defer cancel()

	session, err := a.resolveSession(ctx, args.SessionID)
	if err != nil {
		return err
	}

	if err := a.Ctrl.RenameSession(ctx, session.ID, args.Title); err != nil {
		return err
	}
	fmt.Printf("%s Renamed %s to %q\n", commandStyle.Render("[OK]"), shortID(session.ID), args.Title)
	return nil
}

// handleSessionDelete deletes a conversation.
func (a *App) handleSessionDelete(args Args) error {
	ctx, cancel := commandContext()
	defer cancel()

	session, err := a.resolveSession(ctx, args.SessionID)
	if err != nil {
		return err
	}

	if err := a.Ctrl.DeleteSession(ctx, session.ID); err != nil {
		return err
	}
	fmt.Printf("%s Deleted %s (%s)\n", commandStyle.Render("[OK]"), shortID(session.ID), session.DisplayTitle())
	return nil
}

// handleSessionExport writes a transcript as Markdown or JSON.
func (a *App) handleSessionExport(args Args) error {
	format := strings.ToLower(args.Format)
	if format == "" {
		format = "md"
	}
	if format != "md" && format != "json" {
		return newUsageError("unknown export format: %s (md or json)", args.Format)
	}

	ctx, cancel := commandContext()
	defer cancel()

	session, err := a.resolveSession(ctx, args.SessionID)
	if err != nil {
		return err
	}

	msgs, err := a.Client.SessionMessages(ctx, session.ID)
	if err != nil {
		a.Bridge.HandleAuthError(err)
		return err
	}

	conv := storage.ExportConversation{
		SessionID:  session.ID,
		Title:      session.DisplayTitle(),
		ExportedAt: time.Now(),
	}
	for _, msg := range msgs {
		role := "assistant"
		if msg.IsUser {
			role = "user"
		}
		conv.Messages = append(conv.Messages, storage.ExportMessage{
			Role:      role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt.Time,
		})
	}

	var data []byte
	if format == "json" {
		data, err = conv.JSON()
		if err != nil {
			return err
		}
	} else {
		data = []byte(conv.Markdown())
	}

	if args.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := storage.WriteExport(args.Output, data); err != nil {
		return err
	}
	fmt.Printf("%s Exported %s to %s\n", commandStyle.Render("[OK]"), shortID(session.ID), args.Output)
	return nil
}

// resolveSession finds a session by id or unique id prefix, refreshing
// the list from the backend first.
func (a *App) resolveSession(ctx context.Context, id string) (*api.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, newUsageError("a session id is required (see: kilokokua sessions list)")
	}

	if err := a.Ctrl.RefreshSessions(ctx); err != nil {
		return nil, err
	}

	var match *api.Session
	for _, s := range a.Ctrl.Sessions() {
		if s.ID == id {
			found := s
			return &found, nil
		}
		if strings.HasPrefix(s.ID, id) {
			if match != nil {
				return nil, newUsageError("session id %q is ambiguous", id)
			}
			found := s
			match = &found
		}
	}
	if match == nil {
		return nil, newUsageError("no session matches %q (see: kilokokua sessions list)", id)
	}
	return match, nil
}

// shortID abbreviates a session id for table display.
func shortID(id string) string {
	return util.TruncateRunes(id, idColumnWidth)
}
