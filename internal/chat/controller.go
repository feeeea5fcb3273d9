// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/backend"
	"github.com/jeranaias/rigchat/internal/model"
)

// DefaultSystemPrompt is sent as the first message of every request.
const DefaultSystemPrompt = "Assistant provides helpful insight"

// ErrBusy is returned by operations that need an idle controller.
var ErrBusy = errors.New("a request is already in flight")

// =============================================================================
// STATE
// =============================================================================

// State is the request lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateSending
	StateSettledSuccess
	StateSettledError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSettledSuccess:
		return "settled-success"
	case StateSettledError:
		return "settled-error"
	default:
		return "unknown"
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Status is the outcome of a submit.
type Status int

const (
	// StatusRejected means the submit had no effect.
	StatusRejected Status = iota

	// StatusReplied means the user and assistant turns were appended.
	StatusReplied

	// StatusFailed means the user turn was appended but the backend failed.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusRejected:
		return "rejected"
	case StatusReplied:
		return "replied"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason explains a rejection.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotReady
	ReasonEmpty
	ReasonBusy
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotReady:
		return "not-ready"
	case ReasonEmpty:
		return "empty"
	case ReasonBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Result describes what a submit did.
type Result struct {
	Status Status
	Reason Reason

	// User is the appended user turn (zero when rejected).
	User model.Turn

	// Reply is the appended assistant turn (StatusReplied only).
	Reply model.Turn

	// Err is the backend error (StatusFailed only).
	Err error

	// Model is the model the request was sent to.
	Model model.Descriptor

	Duration time.Duration
}

// Accepted reports whether the submit reached the backend.
func (r Result) Accepted() bool {
	return r.Status != StatusRejected
}

func rejected(reason Reason) Result {
	return Result{Status: StatusRejected, Reason: reason}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// ControllerConfig holds request settings.
type ControllerConfig struct {
	// SystemPrompt leads every payload (default: DefaultSystemPrompt).
	SystemPrompt string

	// IncludeNotices sends notice turns to the backend as assistant content.
	IncludeNotices bool

	// Timeout bounds a single backend call; zero means no extra bound.
	Timeout time.Duration
}

// Controller runs at most one backend request at a time against a store.
//
// The Controller is thread-safe. The single-flight gate is a compare-and-swap
// on the state, so a concurrent submit observes StateSending and is rejected.
type Controller struct {
	store   *model.Store
	backend backend.Chatter
	ready   func() bool
	config  ControllerConfig
	logger  *zap.Logger

	state    atomic.Int32
	onSettle func(Result)
}

// NewController creates a controller. ready reports backend readiness.
func NewController(store *model.Store, chatter backend.Chatter, ready func() bool, config ControllerConfig, logger *zap.Logger) *Controller {
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:   store,
		backend: chatter,
		ready:   ready,
		config:  config,
		logger:  logger,
	}
}

// OnSettle registers a hook called after every accepted request settles.
// It must be set before the first Submit.
func (c *Controller) OnSettle(fn func(Result)) {
	c.onSettle = fn
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Pending reports whether a request is in flight.
func (c *Controller) Pending() bool {
	return c.State() != StateIdle
}

// Submit sends text to the backend using the given model and blocks until
// the request settles. Rejected submits change nothing.
func (c *Controller) Submit(ctx context.Context, text string, desc model.Descriptor) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return rejected(ReasonEmpty)
	}
	if c.ready == nil || !c.ready() {
		return rejected(ReasonNotReady)
	}
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateSending)) {
		return rejected(ReasonBusy)
	}

	result := c.send(ctx, text, desc)
	if c.onSettle != nil {
		c.onSettle(result)
	}
	return result
}

// send performs the Sending phase. The state is back to Idle when it returns,
// even if the backend panics.
func (c *Controller) send(ctx context.Context, text string, desc model.Descriptor) Result {
	defer c.state.Store(int32(StateIdle))

	// The payload carries the history before this submit plus text as the
	// final user entry, so it is built before the echo is appended.
	payload := c.store.ToBackendPayload(c.config.SystemPrompt, text, model.PayloadOptions{
		IncludeNotices: c.config.IncludeNotices,
	})
	user := c.store.Append(model.SpeakerUser, text)

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.backend.Chat(ctx, payload, backend.Options{
		Model:    desc.ID,
		Provider: desc.Provider,
		Local:    desc.IsLocal(),
	})
	elapsed := time.Since(start)

	if err != nil {
		c.state.Store(int32(StateSettledError))
		c.logger.Warn("chat request failed",
			zap.String("model", desc.ID),
			zap.Uint64("seq", user.Seq),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return Result{Status: StatusFailed, User: user, Err: err, Model: desc, Duration: elapsed}
	}

	c.state.Store(int32(StateSettledSuccess))
	assistant := c.store.Append(model.SpeakerAssistant, backend.Normalize(reply))
	c.logger.Debug("chat request settled",
		zap.String("model", desc.ID),
		zap.Uint64("seq", assistant.Seq),
		zap.Duration("elapsed", elapsed))
	return Result{Status: StatusReplied, User: user, Reply: assistant, Model: desc, Duration: elapsed}
}

// Reset clears the transcript. It fails with ErrBusy while a request is
// in flight and blocks submits for its duration.
func (c *Controller) Reset() error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateSending)) {
		return ErrBusy
	}
	defer c.state.Store(int32(StateIdle))
	c.store.Clear()
	return nil
}
