// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// FallbackReply is the assistant text used when a successful reply carries
// no usable content.
const FallbackReply = "🤖 There is no response from the assistant."

// ErrNoBackend is returned when no backend is configured for a model.
var ErrNoBackend = errors.New("no backend configured for model")

// Message is one entry of the chat payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options accompany every chat request.
type Options struct {
	// Model is the catalog id sent to the service.
	Model string

	// Provider is the catalog provider (OpenAI, Anthropic, Local, ...).
	Provider string

	// Local routes the request to the local backend.
	Local bool
}

// Reply is the raw JSON document returned by a backend.
type Reply json.RawMessage

// StringReply wraps plain text as a JSON string reply.
func StringReply(s string) Reply {
	b, _ := json.Marshal(s)
	return Reply(b)
}

// Chatter performs a single non-streaming chat request.
type Chatter interface {
	Chat(ctx context.Context, msgs []Message, opts Options) (Reply, error)
}

// Prober reports whether a backend can accept requests.
type Prober interface {
	Ping(ctx context.Context) error
}

// ChatterFunc adapts a function to the Chatter interface.
type ChatterFunc func(ctx context.Context, msgs []Message, opts Options) (Reply, error)

// Chat calls f.
func (f ChatterFunc) Chat(ctx context.Context, msgs []Message, opts Options) (Reply, error) {
	return f(ctx, msgs, opts)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) error

// Ping calls f.
func (f ProberFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// contentPaths are tried in order on object replies.
var contentPaths = []string{
	"message.content",
	"choices.0.message.content",
}

// Normalize extracts the assistant text from a raw reply. A JSON string is
// used verbatim; objects are searched for a nested message content field.
// Anything else yields FallbackReply.
func Normalize(r Reply) string {
	raw := strings.TrimSpace(string(r))
	if raw == "" || !gjson.Valid(raw) {
		return FallbackReply
	}

	doc := gjson.Parse(raw)
	if doc.Type == gjson.String {
		return doc.String()
	}
	if !doc.IsObject() {
		return FallbackReply
	}

	for _, path := range contentPaths {
		v := doc.Get(path)
		if v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return FallbackReply
}
