// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// The client implements backend.Chatter and backend.Prober so the chat core
// can route local models to it. Replies are returned as raw JSON; the core
// extracts message.content itself.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - ClientError: typed error with ErrorType for handling
//   - ModelInfo: an installed model as reported by /api/tags
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: url})
//	if err := client.Ping(ctx); err != nil {
//	    return err
//	}
//	reply, err := client.Chat(ctx, msgs, backend.Options{Model: "llama3.2:3b"})
package ollama
