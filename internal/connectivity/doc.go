// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connectivity owns the tri-state backend reachability signal.
//
// The monitor probes GET /health and reduces the outcome to one of three
// states: Unknown (probe in flight or never run), Connected (service
// answered and the AI backend reports itself initialized), Disconnected
// (anything else). Sending is only permitted while Connected.
//
// Probe failures are terminal state transitions, never errors returned to
// the monitor's callers: connectivity flakiness stays isolated from
// message-send error handling.
//
// Re-probe policy:
//
//   - every re-probe passes through Unknown first, so a "connecting"
//     affordance can be shown instead of flicking straight from
//     Disconnected to Connected
//   - while Disconnected the monitor polls on a fixed interval
//   - while Connected it is idle; a probe is only re-triggered by a send
//     failure classified as a network error, or by explicit user retry
//   - overlapping probes are allowed but only the most recently started
//     probe's result is applied; stale results are discarded
package connectivity
