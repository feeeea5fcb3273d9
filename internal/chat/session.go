// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/backend"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/readiness"
)

// DefaultModel is selected when no default is configured.
const DefaultModel = "gpt-4o"

// SwitchNoticeFormat formats the notice appended on model switch.
const SwitchNoticeFormat = "🗘 Switched to %s (%s)"

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Session.
type Options struct {
	// Registry is the model catalog (required).
	Registry *model.Registry

	// Backend performs chat requests (required).
	Backend backend.Chatter

	// Prober is polled by the readiness monitor. When nil the host marks
	// the session ready with MarkReady.
	Prober backend.Prober

	// DefaultModel is the initially selected model id.
	DefaultModel string

	SystemPrompt   string
	IncludeNotices bool
	RequestTimeout time.Duration
	PollInterval   time.Duration

	Logger *zap.Logger

	// OnReady is called once when the backend becomes ready.
	OnReady func()

	// OnSettle is called after every accepted submit settles.
	OnSettle func(Result)
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a read-only view of a session for presentation.
type Snapshot struct {
	Turns   []model.Turn
	Pending bool
	Model   model.Descriptor
	Ready   bool
	State   State
	Draft   string
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the entry point for presentation layers: submit input, switch
// models and read snapshots.
//
// The Session is thread-safe for concurrent use.
type Session struct {
	id         string
	registry   *model.Registry
	store      *model.Store
	controller *Controller
	signal     *readiness.Signal
	monitor    *readiness.Monitor
	logger     *zap.Logger
	onReady    func()
	readyOnce  sync.Once

	mu       sync.Mutex
	selected string
	draft    string
}

// NewSession creates a session with an empty transcript.
func NewSession(opts Options) (*Session, error) {
	if opts.Registry == nil {
		return nil, errors.New("chat: registry is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("chat: backend is required")
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = DefaultModel
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	id := uuid.NewString()
	logger := opts.Logger.With(zap.String("session", id))
	signal := readiness.NewSignal()

	s := &Session{
		id:       id,
		registry: opts.Registry,
		store:    model.NewStore(),
		signal:   signal,
		logger:   logger,
		onReady:  opts.OnReady,
		selected: opts.Registry.Resolve(opts.DefaultModel).ID,
	}
	s.controller = NewController(s.store, opts.Backend, signal.Ready, ControllerConfig{
		SystemPrompt:   opts.SystemPrompt,
		IncludeNotices: opts.IncludeNotices,
		Timeout:        opts.RequestTimeout,
	}, logger)
	if opts.OnSettle != nil {
		s.controller.OnSettle(opts.OnSettle)
	}
	if opts.Prober != nil {
		s.monitor = readiness.NewMonitor(opts.Prober,
			readiness.WithInterval(opts.PollInterval),
			readiness.WithSignal(signal),
			readiness.WithLogger(logger))
	}
	return s, nil
}

// ID returns the session id used in logs.
func (s *Session) ID() string {
	return s.id
}

// Start begins readiness polling. Without a prober, or when the session is
// already ready, it does nothing.
func (s *Session) Start(ctx context.Context) error {
	if s.monitor == nil || s.signal.Ready() {
		return nil
	}
	if err := s.monitor.Start(ctx, s.fireReady); err != nil {
		return fmt.Errorf("start readiness monitor: %w", err)
	}
	return nil
}

// Close stops readiness polling. It is safe to call more than once.
func (s *Session) Close() {
	if s.monitor != nil {
		s.monitor.Stop()
	}
}

// MarkReady resolves readiness directly, for hosts that know the backend is
// usable without probing.
func (s *Session) MarkReady() {
	s.signal.Resolve()
	s.fireReady()
}

// fireReady runs the ready hook at most once, whichever of the monitor and
// MarkReady gets there first.
func (s *Session) fireReady() {
	s.readyOnce.Do(func() {
		s.logger.Info("session ready", zap.String("model", s.CurrentModel().ID))
		if s.onReady != nil {
			s.onReady()
		}
	})
}

// Ready reports whether the backend is ready.
func (s *Session) Ready() bool {
	return s.signal.Ready()
}

// ReadyChan returns a channel closed when the backend becomes ready.
func (s *Session) ReadyChan() <-chan struct{} {
	return s.signal.Done()
}

// WaitReady blocks until the backend is ready or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	return s.signal.Wait(ctx)
}

// =============================================================================
// COMMANDS
// =============================================================================

// SubmitUserMessage trims raw and, when it is non-empty and the backend is
// ready, clears the draft and sends it. It blocks until the request settles.
func (s *Session) SubmitUserMessage(ctx context.Context, raw string) Result {
	text := strings.TrimSpace(raw)
	if text == "" {
		return rejected(ReasonEmpty)
	}
	if !s.Ready() {
		return rejected(ReasonNotReady)
	}

	s.mu.Lock()
	s.draft = ""
	desc := s.registry.Resolve(s.selected)
	s.mu.Unlock()

	return s.controller.Submit(ctx, text, desc)
}

// SetDraft replaces the pending-input buffer.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// Draft returns the pending-input buffer.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SubmitDraft submits the pending-input buffer.
func (s *Session) SubmitDraft(ctx context.Context) Result {
	return s.SubmitUserMessage(ctx, s.Draft())
}

// SwitchModel selects the model with the given id, falling back to the
// first catalog entry for unknown ids, and records the switch as a notice.
func (s *Session) SwitchModel(id string) model.Descriptor {
	desc := s.registry.Resolve(id)
	if desc.ID != id {
		s.logger.Warn("unknown model, using fallback",
			zap.String("requested", id),
			zap.String("model", desc.ID))
	}

	s.mu.Lock()
	s.selected = desc.ID
	s.mu.Unlock()

	s.store.Append(model.SpeakerNotice, fmt.Sprintf(SwitchNoticeFormat, desc.Name, desc.Provider))
	return desc
}

// Clear empties the transcript. It fails with ErrBusy while a request is
// in flight.
func (s *Session) Clear() error {
	return s.controller.Reset()
}

// =============================================================================
// QUERIES
// =============================================================================

// CurrentModel returns the selected model descriptor.
func (s *Session) CurrentModel() model.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Resolve(s.selected)
}

// Models returns the catalog in display order.
func (s *Session) Models() []model.Descriptor {
	return s.registry.All()
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	desc := s.registry.Resolve(s.selected)
	draft := s.draft
	s.mu.Unlock()

	state := s.controller.State()
	return Snapshot{
		Turns:   s.store.Snapshot(),
		Pending: state != StateIdle,
		Model:   desc,
		Ready:   s.signal.Ready(),
		State:   state,
		Draft:   draft,
	}
}
