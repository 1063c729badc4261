// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the user identity and the bearer credential.
//
// The Bridge is the only component allowed to read, write or clear the
// credential. Everything else consumes it read-only: the API client pulls
// the token through the api.TokenSource interface, and the chat controller
// subscribes to identity changes to reset its session state.
//
// A 401 from any authenticated call is routed here via HandleAuthError and
// becomes a forced logout. The forced logout is idempotent: concurrent 401s
// from parallel calls produce exactly one identity-change notification.
package auth
