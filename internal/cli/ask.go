// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the kilokokua CLI.
//
// Command: ask [question]
// Short:   Ask a single question
//
// Examples:
//   kilokokua ask "How much rain does Hilo get in winter?"
//   kilokokua ask --json "Sea level trend for Honolulu"
//   echo "question" | xargs kilokokua ask
//
// The connectivity rules match the TUI: the backend is probed first, and
// a question is only sent when the probe reports the AI service ready.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/connectivity"
	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

// askWordWrap is the markdown word-wrap width for rendered replies.
const askWordWrap = 80

// renderReplyMarkdown renders a bot reply for terminal display. Returns
// the original content if rendering fails.
func renderReplyMarkdown(content string) string {
	width := GetTerminalWidth()
	if width > askWordWrap {
		width = askWordWrap
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayReply prints a reply, markdown-rendered only on a TTY so piped
// output stays clean.
func displayReply(reply string, markdown bool) {
	if markdown && IsStdoutTTY() {
		fmt.Print(renderReplyMarkdown(reply))
		return
	}
	fmt.Println(reply)
}

// HandleAsk handles the "ask" command: probe, send, print the reply.
func (a *App) HandleAsk(args Args) error {
	question := strings.TrimSpace(args.Query)
	if question == "" {
		return newUsageError(`usage: kilokokua ask "question"`)
	}

	ctx, cancel := commandContext()
	defer cancel()

	st := a.Monitor.ProbeSync(ctx)
	if !st.CanSend() {
		if st.Degraded {
			return fmt.Errorf("backend is reachable but the AI service is still starting up, try again shortly")
		}
		return chat.ErrDisconnected
	}

	if !args.Quiet && !args.JSON {
		fmt.Fprintf(os.Stderr, "%s %s\n", infoStyle.Render("[API]"), a.Client.BaseURL())
	}

	if err := a.Ctrl.Send(ctx, question); err != nil {
		return err
	}

	reply := lastBotReply(a.Ctrl.Messages())

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"reply":      reply,
			"session_id": a.Ctrl.SessionID(),
		})
	}

	fmt.Println()
	displayReply(reply, a.Config.UI.Markdown)
	return nil
}

// lastBotReply returns the content of the most recent bot message.
func lastBotReply(msgs []chat.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Origin == chat.OriginBot {
			return msgs[i].Content
		}
	}
	return ""
}

// connectivityWord renders a short human word for a probe result.
func connectivityWord(st connectivity.Status) string {
	switch {
	case st.State == connectivity.StateConnected:
		return commandStyle.Render("connected")
	case st.Degraded:
		return warningStyle.Render("degraded (AI service initializing)")
	case st.State == connectivity.StateUnknown:
		return warningStyle.Render("unknown")
	default:
		return styles.RenderError("disconnected")
	}
}
