// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for the kilokokua CLI.
//
// Handlers ALWAYS return errors rather than printing and returning nil;
// main.go displays the error once and exits with the mapped code.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/jeranaias/kilokokua-tui/internal/api"
	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

// Exit codes for different error categories.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitNotFound     = 7
)

// usageError marks an error as invalid command usage.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// newUsageError creates a command usage error.
func newUsageError(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsageError
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return ExitNotFound
	}

	switch {
	case api.IsAuthRequired(err):
		return ExitAuthError
	case api.IsNetwork(err), errors.Is(err, chat.ErrDisconnected):
		return ExitNetworkError
	case api.IsValidation(err):
		return ExitUsageError
	}
	return ExitGeneralError
}

// DisplayError displays an error in a consistent format. In JSON mode a
// structured object goes to stdout so scripts can parse failures too.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	fmt.Fprintf(os.Stderr, "%s %v\n", styles.RenderError("[Error]"), err)
}
