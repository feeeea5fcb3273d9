// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/rigchat/internal/backend"
	"github.com/jeranaias/rigchat/internal/model"
)

var gpt4o = model.Descriptor{ID: "gpt-4o", Name: "GPT-4o", Provider: "OpenAI"}

// recorder is a backend that records requests and replies from a script.
type recorder struct {
	reply   backend.Reply
	err     error
	calls   int
	payload []backend.Message
	opts    backend.Options
	during  func()
}

func (r *recorder) Chat(ctx context.Context, msgs []backend.Message, opts backend.Options) (backend.Reply, error) {
	r.calls++
	r.payload = msgs
	r.opts = opts
	if r.during != nil {
		r.during()
	}
	return r.reply, r.err
}

func alwaysReady() bool { return true }

func newTestController(b backend.Chatter, ready func() bool) (*Controller, *model.Store) {
	store := model.NewStore()
	return NewController(store, b, ready, ControllerConfig{}, nil), store
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestController_SubmitSuccess(t *testing.T) {
	rec := &recorder{reply: backend.StringReply("hi there")}
	c, store := newTestController(rec, alwaysReady)
	require.False(t, c.Pending())

	var stateDuring State
	rec.during = func() { stateDuring = c.State() }

	res := c.Submit(context.Background(), "hello", gpt4o)

	require.Equal(t, StatusReplied, res.Status)
	assert.Equal(t, StateSending, stateDuring)
	assert.False(t, c.Pending())
	assert.Equal(t, StateIdle, c.State())

	turns := store.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, model.SpeakerUser, turns[0].Speaker)
	assert.Equal(t, "hello", turns[0].Text)
	assert.Equal(t, model.SpeakerAssistant, turns[1].Speaker)
	assert.Equal(t, "hi there", turns[1].Text)
	assert.Equal(t, turns[0], res.User)
	assert.Equal(t, turns[1], res.Reply)
}

func TestController_SubmitRejections(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		ready  bool
		reason Reason
	}{
		{"not ready", "hello", false, ReasonNotReady},
		{"empty", "", true, ReasonEmpty},
		{"whitespace only", "  \t\n ", true, ReasonEmpty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{reply: backend.StringReply("unused")}
			c, store := newTestController(rec, func() bool { return tc.ready })

			res := c.Submit(context.Background(), tc.text, gpt4o)

			assert.Equal(t, StatusRejected, res.Status)
			assert.Equal(t, tc.reason, res.Reason)
			assert.False(t, res.Accepted())
			assert.Equal(t, 0, store.Len())
			assert.Equal(t, 0, rec.calls)
		})
	}
}

func TestController_TrimsUserText(t *testing.T) {
	rec := &recorder{reply: backend.StringReply("ok")}
	c, store := newTestController(rec, alwaysReady)

	c.Submit(context.Background(), "  hello  ", gpt4o)

	assert.Equal(t, "hello", store.Snapshot()[0].Text)
	assert.Equal(t, "hello", rec.payload[len(rec.payload)-1].Content)
}

func TestController_EmptyObjectUsesFallback(t *testing.T) {
	rec := &recorder{reply: backend.Reply(`{}`)}
	c, store := newTestController(rec, alwaysReady)

	res := c.Submit(context.Background(), "hello", gpt4o)

	require.Equal(t, StatusReplied, res.Status)
	turns := store.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, backend.FallbackReply, turns[1].Text)
}

func TestController_NestedMessageContent(t *testing.T) {
	rec := &recorder{reply: backend.Reply(`{"message":{"role":"assistant","content":"nested"}}`)}
	c, store := newTestController(rec, alwaysReady)

	c.Submit(context.Background(), "hello", gpt4o)
	assert.Equal(t, "nested", store.Snapshot()[1].Text)
}

func TestController_BackendErrorAppendsNothing(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := model.NewStore()
	boom := errors.New("backend exploded")
	c := NewController(store, &recorder{err: boom}, alwaysReady, ControllerConfig{}, zap.New(core))

	res := c.Submit(context.Background(), "hello", gpt4o)

	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, c.Pending())

	turns := store.Snapshot()
	require.Len(t, turns, 1)
	assert.Equal(t, model.SpeakerUser, turns[0].Speaker)

	entries := logs.FilterMessage("chat request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gpt-4o", entries[0].ContextMap()["model"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	// The controller stays usable.
	c.backend = &recorder{reply: backend.StringReply("back")}
	assert.Equal(t, StatusReplied, c.Submit(context.Background(), "again", gpt4o).Status)
}

func TestController_PanicResetsState(t *testing.T) {
	b := backend.ChatterFunc(func(ctx context.Context, msgs []backend.Message, opts backend.Options) (backend.Reply, error) {
		panic("backend bug")
	})
	c, _ := newTestController(b, alwaysReady)

	assert.Panics(t, func() { c.Submit(context.Background(), "hello", gpt4o) })
	assert.Equal(t, StateIdle, c.State())
}

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

func TestController_PayloadMirrorsHistory(t *testing.T) {
	rec := &recorder{reply: backend.StringReply("r1")}
	c, store := newTestController(rec, alwaysReady)
	ctx := context.Background()

	c.Submit(ctx, "first", gpt4o)
	rec.reply = backend.StringReply("r2")
	c.Submit(ctx, "second", gpt4o)

	// History before "second" was two turns; plus system and new user.
	require.Len(t, rec.payload, 4)
	assert.Equal(t, []backend.Message{
		{Role: model.RoleSystem, Content: DefaultSystemPrompt},
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "r1"},
		{Role: model.RoleUser, Content: "second"},
	}, rec.payload)
	assert.Equal(t, 4, store.Len())
}

func TestController_PayloadNoticeHandling(t *testing.T) {
	ctx := context.Background()
	notice := "🗘 Switched to GPT-4o (OpenAI)"

	t.Run("excluded by default", func(t *testing.T) {
		rec := &recorder{reply: backend.StringReply("ok")}
		c, store := newTestController(rec, alwaysReady)
		store.Append(model.SpeakerNotice, notice)

		c.Submit(ctx, "hello", gpt4o)
		assert.Len(t, rec.payload, 2)
	})

	t.Run("included when configured", func(t *testing.T) {
		rec := &recorder{reply: backend.StringReply("ok")}
		store := model.NewStore()
		c := NewController(store, rec, alwaysReady, ControllerConfig{IncludeNotices: true, SystemPrompt: "custom"}, nil)
		store.Append(model.SpeakerNotice, notice)

		c.Submit(ctx, "hello", gpt4o)
		require.Len(t, rec.payload, 3)
		assert.Equal(t, "custom", rec.payload[0].Content)
		assert.Equal(t, backend.Message{Role: model.RoleAssistant, Content: notice}, rec.payload[1])
	})
}

func TestController_OptionsCarryModel(t *testing.T) {
	rec := &recorder{reply: backend.StringReply("ok")}
	c, _ := newTestController(rec, alwaysReady)

	local := model.Descriptor{ID: "llama3.2:3b", Name: "Llama", Provider: "Local"}
	c.Submit(context.Background(), "hello", local)

	assert.Equal(t, backend.Options{Model: "llama3.2:3b", Provider: "Local", Local: true}, rec.opts)
}

// =============================================================================
// SINGLE-FLIGHT TESTS
// =============================================================================

func TestController_SingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	b := backend.ChatterFunc(func(ctx context.Context, msgs []backend.Message, opts backend.Options) (backend.Reply, error) {
		close(entered)
		<-release
		return backend.StringReply("done"), nil
	})
	c, store := newTestController(b, alwaysReady)

	first := make(chan Result)
	go func() { first <- c.Submit(context.Background(), "one", gpt4o) }()
	<-entered

	require.True(t, c.Pending())
	before := store.Snapshot()
	second := c.Submit(context.Background(), "two", gpt4o)
	assert.Equal(t, StatusRejected, second.Status)
	assert.Equal(t, ReasonBusy, second.Reason)
	assert.Equal(t, before, store.Snapshot())
	assert.ErrorIs(t, c.Reset(), ErrBusy)

	close(release)
	res := <-first
	assert.Equal(t, StatusReplied, res.Status)
	assert.False(t, c.Pending())

	turns := store.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, "one", turns[0].Text)
	assert.Equal(t, "done", turns[1].Text)
}

func TestController_OnSettle(t *testing.T) {
	rec := &recorder{reply: backend.StringReply("ok")}
	c, _ := newTestController(rec, alwaysReady)

	var settled []Result
	c.OnSettle(func(r Result) {
		assert.Equal(t, StateIdle, c.State())
		settled = append(settled, r)
	})

	c.Submit(context.Background(), "", gpt4o)
	c.Submit(context.Background(), "hello", gpt4o)

	require.Len(t, settled, 1)
	assert.Equal(t, StatusReplied, settled[0].Status)
}

func TestController_Reset(t *testing.T) {
	rec := &recorder{reply: backend.StringReply("ok")}
	c, store := newTestController(rec, alwaysReady)
	c.Submit(context.Background(), "hello", gpt4o)

	require.NoError(t, c.Reset())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, StateIdle, c.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "sending", StateSending.String())
	assert.Equal(t, "settled-success", StateSettledSuccess.String())
	assert.Equal(t, "settled-error", StateSettledError.String())
	assert.Equal(t, "busy", ReasonBusy.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
