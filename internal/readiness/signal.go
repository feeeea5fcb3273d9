// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package readiness

import (
	"context"
	"sync"
)

// Signal is a one-shot readiness future. The zero value is not usable;
// create one with NewSignal.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal returns an unresolved signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Resolve marks the backend ready. It reports whether this call performed
// the transition; later calls are no-ops.
func (s *Signal) Resolve() bool {
	resolved := false
	s.once.Do(func() {
		close(s.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel closed once the signal is resolved.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Ready reports whether the signal has been resolved.
func (s *Signal) Ready() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the signal resolves or ctx is done.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
