// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jeranaias/rigchat/internal/backend"
)

const testKey = "sk-or-test-abcdefghijklmnopqrstuvwxyz0123456789"

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenRouterClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenRouterClient(testKey).WithBaseURL(server.URL).WithRateLimit(1000, 100)
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_SendsQualifiedModel(t *testing.T) {
	var got ChatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer "+testKey {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}]}`))
	})

	reply, err := client.Chat(context.Background(),
		[]backend.Message{{Role: "user", Content: "hello"}},
		backend.Options{Model: "gpt-4o", Provider: "OpenAI"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got.Model != "openai/gpt-4o" {
		t.Errorf("model = %q, want openai/gpt-4o", got.Model)
	}
	if text := backend.Normalize(reply); text != "hi there" {
		t.Errorf("Normalize(reply) = %q", text)
	}
}

func TestChat_NotConfigured(t *testing.T) {
	client := NewOpenRouterClient("  ")
	_, err := client.Chat(context.Background(), nil, backend.Options{Model: "gpt-4o"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Chat() error = %v, want ErrNotConfigured", err)
	}
	if err := client.Ping(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Ping() error = %v, want ErrNotConfigured", err)
	}
}

func TestChat_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	})

	reply, err := client.Chat(context.Background(), nil, backend.Options{Model: "gpt-4o", Provider: "OpenAI"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if backend.Normalize(reply) != "recovered" {
		t.Errorf("reply = %s", reply)
	}
}

func TestChat_MaxRetriesCapsAttempts(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		wantCalls  int32
	}{
		{"single attempt", 1, 1},
		{"clamped to one", 0, 1},
		{"two attempts", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}).WithMaxRetries(tt.maxRetries)

			_, err := client.Chat(context.Background(), nil, backend.Options{Model: "gpt-4o", Provider: "OpenAI"})
			if err == nil {
				t.Fatal("Chat() error = nil, want failure")
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"No auth credentials found"}}`, ErrAuthFailed},
		{"credits", http.StatusPaymentRequired, ``, ErrInsufficientCredits},
		{"not found", http.StatusNotFound, `{"error":{"message":"no such model"}}`, ErrModelNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := client.Chat(context.Background(), nil, backend.Options{Model: "gpt-4o"})
			if !errors.Is(err, tc.want) {
				t.Errorf("Chat() error = %v, want %v", err, tc.want)
			}
			if calls.Load() != 1 {
				t.Errorf("non-retryable error was retried %d times", calls.Load())
			}
		})
	}
}

func TestChat_BadRequestIsOpenRouterError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"invalid_request","message":"messages is required"}}`))
	})

	_, err := client.Chat(context.Background(), nil, backend.Options{Model: "gpt-4o"})
	var orErr *OpenRouterError
	if !errors.As(err, &orErr) {
		t.Fatalf("Chat() error = %v, want *OpenRouterError", err)
	}
	if orErr.Status != http.StatusBadRequest || orErr.Code != "invalid_request" {
		t.Errorf("OpenRouterError = %+v", orErr)
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key" {
			t.Errorf("path = %q, want /key", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"label":"test"}}`))
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestQualifyModel(t *testing.T) {
	tests := []struct {
		id, provider, want string
	}{
		{"gpt-4o", "OpenAI", "openai/gpt-4o"},
		{"claude-sonnet-4", "Anthropic", "anthropic/claude-sonnet-4"},
		{"mistral-large", "Mistral", "mistralai/mistral-large"},
		{"openrouter/auto", "OpenAI", "openrouter/auto"},
		{"custom", "Unknown", "custom"},
	}
	for _, tc := range tests {
		if got := QualifyModel(tc.id, tc.provider); got != tc.want {
			t.Errorf("QualifyModel(%q, %q) = %q, want %q", tc.id, tc.provider, got, tc.want)
		}
	}
}

func TestAPIKeyMasked(t *testing.T) {
	client := NewOpenRouterClient(testKey)
	if got := client.APIKeyMasked(); got != "sk-or-...6789" {
		t.Errorf("APIKeyMasked() = %q", got)
	}
	if got := NewOpenRouterClient("short").APIKeyMasked(); got != "*****" {
		t.Errorf("APIKeyMasked() = %q", got)
	}
}
