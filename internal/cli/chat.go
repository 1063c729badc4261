// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the kilokokua CLI.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   kilokokua chat                 Start interactive chat
//   kilokokua chat --quiet         Skip the welcome banner
//
// Interactive Commands (during chat):
//   /new                Start a fresh conversation
//   /sessions           List your conversations
//   /switch <id>        Load a conversation
//   /rename <title>     Rename the current conversation
//   /delete <id>        Delete a conversation
//   /status             Show connectivity and session state
//   /export [file]      Export the transcript as Markdown
//   /help, /h           Show available commands
//   /quit, /q           Exit chat
//   Ctrl+C / Ctrl+D     Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/config"
	"github.com/jeranaias/kilokokua-tui/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Arrow keys
// navigate history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command: a line-oriented REPL over the
// same controller the TUI uses.
func (a *App) HandleChat(args Args) error {
	// Probe up front so the first prompt reflects reality, and start the
	// background monitor so the REPL recovers from outages on its own.
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 15*time.Second)
	a.Monitor.ProbeSync(probeCtx)
	cancelProbe()
	a.Monitor.Start(context.Background())
	defer a.Monitor.Stop()

	if !args.Quiet {
		a.printChatWelcome()
	}

	input := NewChatCLI()
	defer input.Close()

	for {
		line, err := input.ReadInput(promptStyle.Render("kilokokua> "))
		if err != nil {
			// liner.ErrPromptAborted is Ctrl+C; anything else is EOF.
			fmt.Println()
			fmt.Println(infoStyle.Render("A hui hou!"))
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := a.handleSlashCommand(line)
			if err != nil {
				DisplayError(err, false)
			}
			if !keepGoing {
				fmt.Println(infoStyle.Render("A hui hou!"))
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			fmt.Println(infoStyle.Render("A hui hou!"))
			return nil
		}

		a.processChatMessage(line)
	}
}

// processChatMessage sends one message and prints the resulting reply.
// The controller appends a bot reply even on failure (disconnected or
// request error), so the transcript is always worth printing. Only the
// rejections that never reach the transcript get a plain error line.
func (a *App) processChatMessage(text string) {
	ctx, cancel := commandContext()
	defer cancel()

	err := a.Ctrl.Send(ctx, text)
	if errors.Is(err, chat.ErrSendInProgress) || errors.Is(err, api.ErrEmptyMessage) {
		DisplayError(err, false)
		return
	}

	reply := lastBotReply(a.Ctrl.Messages())
	if reply == "" {
		return
	}
	fmt.Println()
	fmt.Printf("%s:\n", botLabelStyle.Render("KiloKōkua"))
	displayReply(reply, a.Config.UI.Markdown)
	fmt.Println()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (keepGoing, error) where keepGoing=false means exit.
func (a *App) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printChatHelp()
		return true, nil

	case "/new", "/n":
		a.Ctrl.NewSession()
		fmt.Println(commandStyle.Render("[Started a fresh conversation]"))
		return true, nil

	case "/sessions", "/ls":
		return true, a.handleSessionList(Args{})

	case "/switch", "/sw":
		if len(rest) == 0 {
			return true, newUsageError("usage: /switch <id>")
		}
		return true, a.replSwitch(rest[0])

	case "/rename":
		if len(rest) == 0 {
			return true, newUsageError("usage: /rename <title>")
		}
		return true, a.replRename(strings.Join(rest, " "))

	case "/delete", "/rm":
		if len(rest) == 0 {
			return true, newUsageError("usage: /delete <id>")
		}
		return true, a.replDelete(rest[0])

	case "/status", "/s":
		return true, a.HandleStatus(Args{})

	case "/export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		return true, a.replExport(path)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// replSwitch loads another conversation into the REPL.
func (a *App) replSwitch(id string) error {
	ctx, cancel := commandContext()
	defer cancel()

	session, err := a.resolveSession(ctx, id)
	if err != nil {
		return err
	}
	if err := a.Ctrl.SelectSession(ctx, session.ID); err != nil {
		return err
	}

	fmt.Printf("%s Switched to %s\n", commandStyle.Render("[OK]"), session.DisplayTitle())
	for _, msg := range a.Ctrl.Messages() {
		label := botLabelStyle.Render("KiloKōkua")
		if msg.Origin == chat.OriginUser {
			label = promptStyle.Render("You")
		}
		fmt.Printf("%s: %s\n", label, msg.Content)
	}
	return nil
}

// replRename renames the current conversation.
func (a *App) replRename(title string) error {
	id := a.Ctrl.SessionID()
	if id == "" {
		return newUsageError("no active conversation to rename; send a message first")
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := a.Ctrl.RenameSession(ctx, id, title); err != nil {
		return err
	}
	fmt.Printf("%s Renamed to %q\n", commandStyle.Render("[OK]"), title)
	return nil
}

// replDelete deletes a conversation by id or prefix.
func (a *App) replDelete(id string) error {
	ctx, cancel := commandContext()
	defer cancel()

	session, err := a.resolveSession(ctx, id)
	if err != nil {
		return err
	}
	if err := a.Ctrl.DeleteSession(ctx, session.ID); err != nil {
		return err
	}
	fmt.Printf("%s Deleted %s\n", commandStyle.Render("[OK]"), session.DisplayTitle())
	return nil
}

// replExport writes the live transcript as Markdown.
func (a *App) replExport(path string) error {
	msgs := a.Ctrl.Messages()
	if len(msgs) == 0 {
		return newUsageError("nothing to export yet")
	}

	conv := storage.ExportConversation{
		SessionID:  a.Ctrl.SessionID(),
		ExportedAt: time.Now(),
	}
	for _, msg := range msgs {
		role := "assistant"
		switch msg.Origin {
		case chat.OriginUser:
			role = "user"
		case chat.OriginInfo:
			role = "info"
		}
		conv.Messages = append(conv.Messages, storage.ExportMessage{
			Role:      role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		path = filepath.Join(home, "kilokokua-"+time.Now().Format("20060102-150405")+".md")
	}

	if err := storage.WriteExport(path, []byte(conv.Markdown())); err != nil {
		return err
	}
	fmt.Printf("%s Exported transcript to %s\n", commandStyle.Render("[OK]"), path)
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// printChatWelcome prints the REPL banner.
func (a *App) printChatWelcome() {
	st := a.Monitor.Status()
	ident := a.Bridge.Current()

	fmt.Println()
	fmt.Println(welcomeStyle.Render("KiloKōkua – The Hawaiʻi Climate AI Concierge"))
	fmt.Println(infoStyle.Render(strings.Repeat("\u2500", 44)))
	fmt.Printf("%s %s\n", infoStyle.Render("Backend:"), a.Client.BaseURL())
	fmt.Printf("%s %s\n", infoStyle.Render("Status: "), connectivityWord(st))
	if ident.Authenticated() {
		fmt.Printf("%s %s\n", infoStyle.Render("Account:"), commandStyle.Render(ident.Username()))
	} else {
		fmt.Printf("%s anonymous (conversations are not saved)\n", infoStyle.Render("Account:"))
	}
	fmt.Println()
	fmt.Println(infoStyle.Render(chat.Greeting))
	fmt.Println()
	fmt.Println(infoStyle.Render("Try asking:"))
	for _, s := range chat.Suggestions {
		fmt.Printf("  %s %s\n", infoStyle.Render("-"), s)
	}
	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available REPL commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(headerStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("\u2500", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/new", "Start a fresh conversation"},
		{"/sessions", "List your conversations"},
		{"/switch <id>", "Load a conversation"},
		{"/rename <title>", "Rename the current conversation"},
		{"/delete <id>", "Delete a conversation"},
		{"/status", "Show connectivity and session state"},
		{"/export [file]", "Export the transcript as Markdown"},
		{"/help, /h", "Show this help"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-17s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+D exits, arrow keys navigate input history"))
	fmt.Println()
}
