// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the KiloKōkua backend.
//
// The backend exposes a small JSON API: a health endpoint, the /ask chat
// endpoint, OAuth2 password-flow authentication, and per-user chat session
// CRUD. This package wraps each endpoint in a typed operation and
// normalizes every failure into an *APIError with a Kind that callers can
// branch on.
//
// # Key Types
//
//   - Client: HTTP client with one method per backend capability
//   - APIError: classified transport error (Network, HTTPStatus, Decode,
//     Validation, AuthRequired)
//   - TokenSource: supplier of the current bearer credential
//
// # Usage
//
// Create a client and ask a question:
//
//	client := api.NewClient("http://localhost:8000")
//	resp, err := client.Ask(ctx, "What's the rainfall on the Big Island?", "")
//
// The client never retries on its own. Retry policy belongs to the callers:
// the connectivity monitor re-probes, everything else surfaces the error.
package api
