// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package readiness

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/rigchat/internal/backend"
)

const testInterval = 5 * time.Millisecond

// flakyProbe fails until it has been called readyAfter times.
type flakyProbe struct {
	calls      atomic.Int32
	readyAfter int32
}

func (p *flakyProbe) Ping(ctx context.Context) error {
	if p.calls.Add(1) < p.readyAfter {
		return errors.New("not yet")
	}
	return nil
}

func neverReady() backend.Prober {
	return backend.ProberFunc(func(ctx context.Context) error {
		return errors.New("unavailable")
	})
}

// =============================================================================
// SIGNAL TESTS
// =============================================================================

func TestSignal_ResolveOnce(t *testing.T) {
	s := NewSignal()
	assert.False(t, s.Ready())

	assert.True(t, s.Resolve())
	assert.False(t, s.Resolve(), "second resolve must be a no-op")
	assert.True(t, s.Ready())

	select {
	case <-s.Done():
	default:
		t.Fatal("Done() should be closed after Resolve")
	}
}

func TestSignal_Wait(t *testing.T) {
	s := NewSignal()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)

	s.Resolve()
	assert.NoError(t, s.Wait(context.Background()))
}

// =============================================================================
// MONITOR TESTS
// =============================================================================

func TestMonitor_CallsOnReadyOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	probe := &flakyProbe{readyAfter: 3}
	m := NewMonitor(probe, WithInterval(testInterval))

	var calls atomic.Int32
	fired := make(chan struct{})
	require.NoError(t, m.Start(context.Background(), func() {
		if calls.Add(1) == 1 {
			close(fired)
		}
	}))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("onReady was not called")
	}
	m.Stop()

	assert.True(t, m.Ready())
	assert.Equal(t, int32(1), calls.Load())

	// Polling stopped after the first success.
	polled := probe.calls.Load()
	time.Sleep(5 * testInterval)
	assert.Equal(t, polled, probe.calls.Load())
	assert.Equal(t, int32(3), polled)
}

func TestMonitor_StopBeforeReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMonitor(neverReady(), WithInterval(testInterval))
	require.NoError(t, m.Start(context.Background(), func() {
		t.Error("onReady must not be called")
	}))
	time.Sleep(3 * testInterval)

	m.Stop()
	m.Stop()
	assert.False(t, m.Ready())
}

func TestMonitor_StopIsIdempotentWithoutStart(t *testing.T) {
	m := NewMonitor(neverReady())
	m.Stop()
	m.Stop()
	assert.ErrorIs(t, m.Start(context.Background(), nil), ErrStopped)
}

func TestMonitor_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMonitor(neverReady(), WithInterval(testInterval))
	require.NoError(t, m.Start(context.Background(), nil))
	assert.ErrorIs(t, m.Start(context.Background(), nil), ErrAlreadyStarted)
	m.Stop()
}

func TestMonitor_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	m := NewMonitor(neverReady(), WithInterval(testInterval))
	require.NoError(t, m.Start(ctx, nil))

	cancel()
	m.Stop()
	assert.False(t, m.Ready())
}

func TestMonitor_ExternalResolve(t *testing.T) {
	defer goleak.VerifyNone(t)

	signal := NewSignal()
	m := NewMonitor(neverReady(), WithInterval(time.Hour), WithSignal(signal))

	fired := make(chan struct{})
	require.NoError(t, m.Start(context.Background(), func() { close(fired) }))

	signal.Resolve()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("onReady was not called after external resolve")
	}
	m.Stop()
	assert.True(t, m.Ready())
}
