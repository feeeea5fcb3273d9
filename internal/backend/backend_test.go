// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// NORMALIZE TESTS
// =============================================================================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		reply Reply
		want  string
	}{
		{"plain string", StringReply("hi there"), "hi there"},
		{"string with markdown", StringReply("**bold**\n- item"), "**bold**\n- item"},
		{"empty string is verbatim", StringReply(""), ""},
		{"ollama message", Reply(`{"model":"x","message":{"role":"assistant","content":"from ollama"},"done":true}`), "from ollama"},
		{"openai choices", Reply(`{"choices":[{"message":{"role":"assistant","content":"from cloud"}}]}`), "from cloud"},
		{"empty object", Reply(`{}`), FallbackReply},
		{"message without content", Reply(`{"message":{"role":"assistant"}}`), FallbackReply},
		{"empty content", Reply(`{"message":{"content":""}}`), FallbackReply},
		{"non-string content", Reply(`{"message":{"content":42}}`), FallbackReply},
		{"number", Reply(`42`), FallbackReply},
		{"null", Reply(`null`), FallbackReply},
		{"array", Reply(`["a"]`), FallbackReply},
		{"invalid json", Reply(`{oops`), FallbackReply},
		{"nil", nil, FallbackReply},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.reply))
		})
	}
}

// =============================================================================
// ROUTER TESTS
// =============================================================================

type fakeBackend struct {
	name    string
	pingErr error
	calls   int
}

func (f *fakeBackend) Chat(ctx context.Context, msgs []Message, opts Options) (Reply, error) {
	f.calls++
	return StringReply(f.name + ":" + opts.Model), nil
}

func (f *fakeBackend) Ping(ctx context.Context) error {
	return f.pingErr
}

func TestRouter_Chat(t *testing.T) {
	local := &fakeBackend{name: "local"}
	cloud := &fakeBackend{name: "cloud"}
	r := NewRouter(local, cloud)
	ctx := context.Background()

	reply, err := r.Chat(ctx, nil, Options{Model: "llama3.2:3b", Local: true})
	require.NoError(t, err)
	assert.Equal(t, "local:llama3.2:3b", Normalize(reply))

	reply, err = r.Chat(ctx, nil, Options{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "cloud:gpt-4o", Normalize(reply))

	assert.Equal(t, 1, local.calls)
	assert.Equal(t, 1, cloud.calls)
}

func TestRouter_ChatMissingBackend(t *testing.T) {
	r := NewRouter(&fakeBackend{name: "local"}, nil)
	_, err := r.Chat(context.Background(), nil, Options{Model: "gpt-4o"})
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestRouter_Ping(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name    string
		local   Backend
		cloud   Backend
		wantErr bool
	}{
		{"none configured", nil, nil, true},
		{"local up", &fakeBackend{}, nil, false},
		{"local down cloud up", &fakeBackend{pingErr: down}, &fakeBackend{}, false},
		{"both down", &fakeBackend{pingErr: down}, &fakeBackend{pingErr: down}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewRouter(tc.local, tc.cloud).Ping(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
