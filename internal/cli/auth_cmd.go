// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login / logout / whoami / register command handlers.
//
// Commands:
//   kilokokua login [username]     Sign in (prompts for password)
//   kilokokua logout               Sign out and clear the stored token
//   kilokokua whoami               Show the signed-in account
//   kilokokua register [username]  Create an account, then sign in
//
// Passwords are read without echo (golang.org/x/term) and never logged.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// HandleLogin handles the "login" command.
func (a *App) HandleLogin(args Args) error {
	username := strings.TrimSpace(args.Query)
	if username == "" {
		username = promptInput("Username: ")
	}
	if username == "" {
		return newUsageError("usage: kilokokua login [username]")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return newUsageError("password must not be empty")
	}

	ctx, cancel := commandContext()
	defer cancel()

	ident, err := a.Bridge.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if !args.Quiet {
		fmt.Printf("%s Aloha, %s!\n", commandStyle.Render("[OK]"), ident.Username())
		if n := len(a.Ctrl.Sessions()); n > 0 {
			fmt.Println(infoStyle.Render(fmt.Sprintf("You have %d saved conversation(s). Run: kilokokua sessions list", n)))
		}
	}
	return nil
}

// HandleLogout handles the "logout" command.
func (a *App) HandleLogout(args Args) error {
	if !a.Bridge.Current().Authenticated() {
		fmt.Println(infoStyle.Render("Not signed in."))
		return nil
	}
	a.Bridge.Logout()
	if !args.Quiet {
		fmt.Printf("%s Signed out. A hui hou!\n", commandStyle.Render("[OK]"))
	}
	return nil
}

// HandleWhoami handles the "whoami" command.
func (a *App) HandleWhoami(args Args) error {
	ident := a.Bridge.Current()

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"authenticated": ident.Authenticated(),
			"username":      ident.Username(),
		})
	}

	if !ident.Authenticated() {
		fmt.Println("anonymous (run: kilokokua login)")
		return nil
	}
	fmt.Println(ident.Username())
	return nil
}

// HandleRegister handles the "register" command: create the account and
// sign straight in, matching the backend signup flow.
func (a *App) HandleRegister(args Args) error {
	username := strings.TrimSpace(args.Query)
	if username == "" {
		username = promptInput("Username: ")
	}
	if username == "" {
		return newUsageError("usage: kilokokua register [username]")
	}

	email := promptInput("Email: ")
	if !strings.Contains(email, "@") {
		return newUsageError("a valid email address is required")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return newUsageError("password must not be empty")
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return newUsageError("passwords do not match")
	}

	ctx, cancel := commandContext()
	defer cancel()

	user, err := a.Bridge.Register(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	ident, err := a.Bridge.Login(ctx, user.Username, password)
	if err != nil {
		// Account exists but the follow-up login failed; tell the user
		// instead of pretending the whole thing failed.
		fmt.Printf("%s Account %s created. Sign in with: kilokokua login %s\n",
			commandStyle.Render("[OK]"), user.Username, user.Username)
		return fmt.Errorf("automatic sign-in failed: %w", err)
	}

	if !args.Quiet {
		fmt.Printf("%s Account created. Aloha, %s!\n", commandStyle.Render("[OK]"), ident.Username())
	}
	return nil
}
