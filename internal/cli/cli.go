// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for kilokokua.
package cli

import (
	"fmt"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdRegister
	CmdSessions
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	APIURL  string // --api-url override, beats config and environment

	// Command-specific
	Query      string // ask question / register-login username
	Subcommand string // sessions subcommand
	SessionID  string // sessions target id
	Title      string // sessions rename title
	Format     string // export format (md|json)
	Output     string // export destination path

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `kilokokua - Hawaiʻi Climate AI Concierge for the terminal

KiloKōkua answers questions about Hawaiʻi climate: rainfall, sea level,
temperature trends, and more. It talks to the KiloKōkua backend API and
keeps your conversations when you sign in.

Usage:
  kilokokua                      Start the TUI (default)
  kilokokua ask "question"       Ask a single question
  kilokokua chat                 Interactive chat REPL
  kilokokua login [username]     Sign in (prompts for password)
  kilokokua logout               Sign out and forget the stored token
  kilokokua whoami               Show the signed-in account
  kilokokua register [username]  Create an account
  kilokokua sessions [subcommand] Manage saved conversations
  kilokokua status               Probe backend connectivity
  kilokokua version              Show version information
  kilokokua help                 Show this help

Session Commands:
  kilokokua sessions list             List your conversations
  kilokokua sessions show <id>        Print a conversation transcript
  kilokokua sessions rename <id> <title>  Rename a conversation
  kilokokua sessions delete <id>      Delete a conversation
  kilokokua sessions export <id>      Export a transcript
    --format md|json                  Export format (default: md)
    --output FILE                     Destination (default: stdout)

Interactive Commands (during chat):
  /new                Start a fresh conversation
  /sessions           List your conversations
  /switch <id>        Load a conversation
  /rename <title>     Rename the current conversation
  /delete <id>        Delete a conversation
  /status             Show connectivity and session state
  /export [file]      Export the transcript as Markdown
  /help               Show available commands
  /quit               Exit chat

Global Flags:
  --api-url URL   Backend base URL (overrides config and KILOKOKUA_API_URL)
  --json          Output in JSON format where supported
  -q, --quiet     Minimal output
  -v, --verbose   Log requests to stderr

Examples:
  kilokokua ask "What is the average rainfall on the Big Island in February?"
  kilokokua login kaimana
  kilokokua sessions export 42f1 --format md --output rainfall.md
  kilokokua status --json

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("kilokokua version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments (without the program name) and
// returns the command and args.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// No remaining args defaults to the TUI.
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "login":
		if len(remaining) > 0 {
			parsedArgs.Query = remaining[0]
		}
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "whoami":
		return CmdWhoami, parsedArgs

	case "register", "signup":
		if len(remaining) > 0 {
			parsedArgs.Query = remaining[0]
		}
		return CmdRegister, parsedArgs

	case "session", "sessions":
		parseSessionArgs(&parsedArgs, remaining)
		return CmdSessions, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown word is treated as a question for ask. This makes
		// `kilokokua "what is el niño?"` do the obvious thing.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--api-url":
			if i+1 < len(args) {
				i++
				parsedArgs.APIURL = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--api-url=") {
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api-url=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs joins the non-flag words into the question.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// parseSessionArgs parses session command specific arguments.
func parseSessionArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "list"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	rest := remaining[1:]

	// Positional: <id> then, for rename, <title...>.
	var positional []string
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--format" && i+1 < len(rest):
			i++
			args.Format = rest[i]
		case strings.HasPrefix(arg, "--format="):
			args.Format = strings.TrimPrefix(arg, "--format=")
		case arg == "--output" && i+1 < len(rest):
			i++
			args.Output = rest[i]
		case strings.HasPrefix(arg, "--output="):
			args.Output = strings.TrimPrefix(arg, "--output=")
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.SessionID = positional[0]
	}
	if len(positional) > 1 {
		args.Title = strings.Join(positional[1:], " ")
	}
}
