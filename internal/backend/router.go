// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Backend is a chat service that can also be probed.
type Backend interface {
	Chatter
	Prober
}

// Router dispatches requests to the local or cloud backend.
// Either side may be nil when it is not configured.
type Router struct {
	Local Backend
	Cloud Backend
}

// NewRouter creates a router. Nil backends are allowed.
func NewRouter(local, cloud Backend) *Router {
	return &Router{Local: local, Cloud: cloud}
}

// target picks the backend for a request.
func (r *Router) target(opts Options) (Backend, error) {
	b := r.Cloud
	if opts.Local {
		b = r.Local
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBackend, opts.Model)
	}
	return b, nil
}

// Chat forwards the request to the backend serving opts.Model.
func (r *Router) Chat(ctx context.Context, msgs []Message, opts Options) (Reply, error) {
	b, err := r.target(opts)
	if err != nil {
		return nil, err
	}
	return b.Chat(ctx, msgs, opts)
}

// Ping probes every configured backend concurrently and succeeds when at
// least one of them answers.
func (r *Router) Ping(ctx context.Context) error {
	var backends []Backend
	for _, b := range []Backend{r.Local, r.Cloud} {
		if b != nil {
			backends = append(backends, b)
		}
	}
	if len(backends) == 0 {
		return ErrNoBackend
	}

	var (
		healthy atomic.Int32
		errs    = make([]error, len(backends))
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range backends {
		i, b := i, b
		g.Go(func() error {
			if err := b.Ping(gctx); err != nil {
				errs[i] = err
				return nil
			}
			healthy.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if healthy.Load() > 0 {
		return nil
	}
	return errors.Join(errs...)
}
