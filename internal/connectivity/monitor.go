// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connectivity

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/kilokokua-tui/internal/api"
)

// =============================================================================
// States
// =============================================================================

// State is the reachability verdict of the backend service.
type State int

const (
	// StateUnknown means no probe has completed yet, or one is in flight.
	StateUnknown State = iota

	// StateConnected means the service answered and the AI backend
	// reported itself initialized. Sending is permitted.
	StateConnected

	// StateDisconnected means the service is unreachable, answered with
	// an error, or is reachable but not ready to serve.
	StateDisconnected
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Status is the full outcome of the most recent probe.
type Status struct {
	// State is the send-gating verdict.
	State State

	// Degraded is true when the service was reachable but the AI backend
	// had not finished initializing. State is Disconnected in that case,
	// but the UI can say "service starting up" instead of "offline".
	Degraded bool

	// CheckedAt is when the deciding probe completed. Zero while Unknown.
	CheckedAt time.Time
}

// CanSend reports whether messages may be sent in this status.
func (s Status) CanSend() bool {
	return s.State == StateConnected
}

// =============================================================================
// Monitor
// =============================================================================

// Prober is the single health endpoint the monitor needs. *api.Client
// satisfies it.
type Prober interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
}

// Listener receives status changes. Called outside the monitor's lock, in
// probe-completion order.
type Listener func(Status)

const (
	// DefaultPollInterval is how often the monitor re-probes while
	// Disconnected.
	DefaultPollInterval = 30 * time.Second

	// probeTimeout bounds a single health check. Shorter than the API
	// client's request timeout; a slow health endpoint is as good as a
	// down one.
	probeTimeout = 10 * time.Second
)

// Monitor tracks backend reachability. Create with NewMonitor, then either
// call Start for background polling or drive probes manually with ProbeSync
// (the TUI does the latter through its tick loop).
type Monitor struct {
	prober       Prober
	pollInterval time.Duration

	// retryLimiter throttles explicit user retries so a held-down retry
	// key does not hammer a struggling backend.
	retryLimiter *rate.Limiter

	mu        sync.Mutex
	status    Status
	probeSeq  uint64 // most recently started probe
	listeners []Listener

	runCtx context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor around the given prober. The initial state
// is Unknown until the first probe completes.
func NewMonitor(prober Prober) *Monitor {
	return &Monitor{
		prober:       prober,
		pollInterval: DefaultPollInterval,
		retryLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// WithPollInterval sets the Disconnected re-probe interval.
func (m *Monitor) WithPollInterval(d time.Duration) *Monitor {
	if d > 0 {
		m.pollInterval = d
	}
	return m
}

// Subscribe registers a listener for status changes. Must be called before
// Start.
func (m *Monitor) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Status returns the current status.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// State returns the current state.
func (m *Monitor) State() State {
	return m.Status().State
}

// =============================================================================
// Lifecycle
// =============================================================================

// Start launches an initial probe and the background poll loop. The loop
// runs until Stop is called or ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	m.runCtx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.ProbeAsync()
	go m.pollLoop()
}

// Stop cancels the poll loop and any in-flight probe, and waits for the
// loop to exit. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) pollLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.runCtx.Done():
			return
		case <-ticker.C:
			// Only re-probe while Disconnected. Connected is trusted
			// until a send fails; Unknown means a probe is already
			// in flight.
			if m.State() == StateDisconnected {
				m.ProbeAsync()
			}
		}
	}
}

// =============================================================================
// Probing
// =============================================================================

// ProbeAsync starts a probe in the background. The state passes through
// Unknown immediately; the terminal state lands when the probe completes,
// unless a newer probe started in the meantime.
func (m *Monitor) ProbeAsync() {
	ctx := m.probeContext()
	seq := m.beginProbe()
	go m.runProbe(ctx, seq)
}

// ProbeSync runs a probe to completion and returns the resulting status.
// Used by the CLI status command and by the TUI's tick handler.
func (m *Monitor) ProbeSync(ctx context.Context) Status {
	seq := m.beginProbe()
	m.runProbe(ctx, seq)
	return m.Status()
}

// Retry triggers an immediate probe on behalf of an explicit user action.
// Rate-limited; returns false when the retry was dropped.
func (m *Monitor) Retry() bool {
	if !m.retryLimiter.Allow() {
		return false
	}
	m.ProbeAsync()
	return true
}

// NoteSendFailure gives the monitor a chance to react to a failed message
// send. A network-classified failure triggers an immediate re-probe so the
// UI reflects the outage without waiting for the next poll tick.
func (m *Monitor) NoteSendFailure(err error) {
	if api.IsNetwork(err) {
		m.ProbeAsync()
	}
}

func (m *Monitor) probeContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runCtx != nil {
		return m.runCtx
	}
	return context.Background()
}

// beginProbe claims the next probe sequence number and moves the state to
// Unknown, preserving the previous check time and degraded flag for
// display while the probe is in flight.
func (m *Monitor) beginProbe() uint64 {
	m.mu.Lock()
	m.probeSeq++
	seq := m.probeSeq
	next := m.status
	next.State = StateUnknown
	changed := next != m.status
	m.status = next
	listeners := m.listenersLocked()
	m.mu.Unlock()

	if changed {
		notify(listeners, next)
	}
	return seq
}

func (m *Monitor) runProbe(ctx context.Context, seq uint64) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	health, err := m.prober.Health(probeCtx)

	next := Status{CheckedAt: time.Now()}
	switch {
	case err != nil:
		next.State = StateDisconnected
	case !health.AIServiceInitialized:
		next.State = StateDisconnected
		next.Degraded = true
	default:
		next.State = StateConnected
	}

	m.mu.Lock()
	if seq != m.probeSeq {
		// A newer probe started while this one ran; its result wins.
		m.mu.Unlock()
		return
	}
	changed := next.State != m.status.State || next.Degraded != m.status.Degraded
	m.status = next
	listeners := m.listenersLocked()
	m.mu.Unlock()

	if changed {
		notify(listeners, next)
	}
}

func (m *Monitor) listenersLocked() []Listener {
	out := make([]Listener, len(m.listeners))
	copy(out, m.listeners)
	return out
}

func notify(listeners []Listener, st Status) {
	for _, fn := range listeners {
		fn(st)
	}
}
