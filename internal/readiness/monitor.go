// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package readiness

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/backend"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 300 * time.Millisecond

var (
	// ErrAlreadyStarted is returned by Start on a running monitor.
	ErrAlreadyStarted = errors.New("readiness monitor already started")

	// ErrStopped is returned by Start after Stop has been called.
	ErrStopped = errors.New("readiness monitor stopped")
)

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithSignal makes the monitor resolve an existing signal.
func WithSignal(s *Signal) Option {
	return func(m *Monitor) {
		if s != nil {
			m.signal = s
		}
	}
}

// WithLogger sets the logger for probe failures.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// Monitor polls a probe until the backend is ready.
type Monitor struct {
	probe    backend.Prober
	interval time.Duration
	signal   *Signal
	logger   *zap.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewMonitor creates a monitor for probe.
func NewMonitor(probe backend.Prober, opts ...Option) *Monitor {
	m := &Monitor{
		probe:    probe,
		interval: DefaultInterval,
		signal:   NewSignal(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Signal returns the readiness signal resolved by this monitor.
func (m *Monitor) Signal() *Signal {
	return m.signal
}

// Ready reports whether the backend has become ready.
func (m *Monitor) Ready() bool {
	return m.signal.Ready()
}

// Start begins polling. onReady, if non-nil, is called exactly once from
// the monitor goroutine when the signal resolves. Polling ends on the first
// successful probe, on Stop, or when ctx is cancelled.
func (m *Monitor) Start(ctx context.Context, onReady func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.run(ctx, onReady)
	return nil
}

// Stop cancels polling and waits for the goroutine to exit. It is safe to
// call more than once and before Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Monitor) run(ctx context.Context, onReady func()) {
	defer close(m.done)

	notify := func() {
		if onReady != nil {
			onReady()
		}
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.signal.Done():
			// Resolved by the host.
			notify()
			return
		case <-ticker.C:
			if err := m.probe.Ping(ctx); err != nil {
				if ctx.Err() == nil {
					m.logger.Debug("backend not ready", zap.Error(err))
				}
				continue
			}
			m.signal.Resolve()
			m.logger.Info("backend ready")
			notify()
			return
		}
	}
}
