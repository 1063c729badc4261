// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connectivity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/kilokokua-tui/internal/api"
)

// proberFunc adapts a closure to the Prober interface.
type proberFunc func(ctx context.Context) (*api.HealthResponse, error)

func (f proberFunc) Health(ctx context.Context) (*api.HealthResponse, error) {
	return f(ctx)
}

func healthyProber() proberFunc {
	return func(ctx context.Context) (*api.HealthResponse, error) {
		return &api.HealthResponse{Status: "healthy", AIServiceInitialized: true}, nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestProbeOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		health       *api.HealthResponse
		err          error
		wantState    State
		wantDegraded bool
	}{
		{
			name:      "healthy and initialized",
			health:    &api.HealthResponse{Status: "healthy", AIServiceInitialized: true},
			wantState: StateConnected,
		},
		{
			name:         "reachable but not initialized",
			health:       &api.HealthResponse{Status: "degraded", AIServiceInitialized: false},
			wantState:    StateDisconnected,
			wantDegraded: true,
		},
		{
			name:      "unreachable",
			err:       &api.APIError{Kind: api.KindNetwork, Message: "connection refused"},
			wantState: StateDisconnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(proberFunc(func(ctx context.Context) (*api.HealthResponse, error) {
				return tt.health, tt.err
			}))

			st := m.ProbeSync(context.Background())
			if st.State != tt.wantState {
				t.Errorf("State = %v, want %v", st.State, tt.wantState)
			}
			if st.Degraded != tt.wantDegraded {
				t.Errorf("Degraded = %v, want %v", st.Degraded, tt.wantDegraded)
			}
			if st.CheckedAt.IsZero() {
				t.Error("CheckedAt not set")
			}
			if got := st.CanSend(); got != (tt.wantState == StateConnected) {
				t.Errorf("CanSend = %v with state %v", got, st.State)
			}
		})
	}
}

func TestInitialStateIsUnknown(t *testing.T) {
	m := NewMonitor(healthyProber())
	if got := m.State(); got != StateUnknown {
		t.Errorf("initial state = %v, want unknown", got)
	}
	if m.Status().CanSend() {
		t.Error("CanSend should be false before the first probe")
	}
}

// Every re-probe must pass through Unknown before landing on a terminal
// state, even when the previous state was already terminal.
func TestReprobePassesThroughUnknown(t *testing.T) {
	m := NewMonitor(healthyProber())

	var mu sync.Mutex
	var seen []State
	m.Subscribe(func(st Status) {
		mu.Lock()
		seen = append(seen, st.State)
		mu.Unlock()
	})

	m.ProbeSync(context.Background())
	m.ProbeSync(context.Background())

	mu.Lock()
	defer mu.Unlock()
	// The first probe starts from Unknown, so only its terminal state is a
	// change. The second probe must announce the Unknown intermediate.
	want := []State{StateConnected, StateUnknown, StateConnected}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d = %v, want %v (full: %v)", i, seen[i], want[i], seen)
		}
	}
}

// When probes overlap, only the most recently started probe's result may
// land. The slower, earlier probe's result is discarded even if it
// completes last.
func TestStaleProbeResultDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})

	var slow atomic.Bool
	slow.Store(true)

	m := NewMonitor(proberFunc(func(ctx context.Context) (*api.HealthResponse, error) {
		if slow.Load() {
			close(slowStarted)
			<-slowRelease
			// Stale answer says everything is fine.
			return &api.HealthResponse{Status: "healthy", AIServiceInitialized: true}, nil
		}
		return nil, errors.New("connection refused")
	}))

	m.ProbeAsync()
	<-slowStarted

	// A newer probe starts and completes while the first is stuck.
	slow.Store(false)
	st := m.ProbeSync(context.Background())
	if st.State != StateDisconnected {
		t.Fatalf("newer probe state = %v, want disconnected", st.State)
	}

	close(slowRelease)

	// Give the stale goroutine time to (wrongly) apply its result.
	time.Sleep(50 * time.Millisecond)
	if got := m.State(); got != StateDisconnected {
		t.Errorf("state after stale probe completed = %v, want disconnected", got)
	}
}

func TestPollLoopRecoversFromOutage(t *testing.T) {
	var calls atomic.Int64
	var down atomic.Bool
	down.Store(true)

	m := NewMonitor(proberFunc(func(ctx context.Context) (*api.HealthResponse, error) {
		calls.Add(1)
		if down.Load() {
			return nil, errors.New("connection refused")
		}
		return &api.HealthResponse{Status: "healthy", AIServiceInitialized: true}, nil
	})).WithPollInterval(10 * time.Millisecond)

	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, "disconnected after initial probe", func() bool {
		return m.State() == StateDisconnected
	})

	// Backend comes back; the poll loop should notice on its own.
	down.Store(false)
	waitFor(t, "reconnect via polling", func() bool {
		return m.State() == StateConnected
	})

	// Connected is trusted: polling stops until something goes wrong.
	settled := calls.Load()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != settled {
		t.Errorf("probed %d more times while connected", calls.Load()-settled)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewMonitor(healthyProber()).WithPollInterval(time.Hour)
	m.Start(context.Background())
	m.Stop()
	m.Stop()
}

func TestRetryIsRateLimited(t *testing.T) {
	m := NewMonitor(healthyProber())

	allowed := 0
	for i := 0; i < 10; i++ {
		if m.Retry() {
			allowed++
		}
	}
	if allowed == 0 {
		t.Fatal("every retry was dropped")
	}
	if allowed == 10 {
		t.Fatal("no retry was rate-limited")
	}
}

func TestNoteSendFailure(t *testing.T) {
	var calls atomic.Int64
	m := NewMonitor(proberFunc(func(ctx context.Context) (*api.HealthResponse, error) {
		calls.Add(1)
		return &api.HealthResponse{Status: "healthy", AIServiceInitialized: true}, nil
	}))

	// Non-network failures are none of the monitor's business.
	m.NoteSendFailure(&api.APIError{Kind: api.KindHTTPStatus, Status: 500})
	m.NoteSendFailure(api.ErrEmptyMessage)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("probed %d times for non-network failures", calls.Load())
	}

	m.NoteSendFailure(&api.APIError{Kind: api.KindNetwork, Message: "broken pipe"})
	waitFor(t, "probe after network failure", func() bool {
		return calls.Load() == 1
	})
}

func TestStateString(t *testing.T) {
	if StateConnected.String() != "connected" ||
		StateDisconnected.String() != "disconnected" ||
		StateUnknown.String() != "unknown" {
		t.Error("unexpected state names")
	}
}
