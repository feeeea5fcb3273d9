// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides OpenRouter integration for cloud LLM inference.
//
// OpenRouter provides access to multiple LLM providers through a single
// OpenAI-compatible API. The client implements backend.Chatter and
// backend.Prober and serves every catalog model whose provider is not Local.
//
// # Key Types
//
//   - OpenRouterClient: HTTP client with rate limiting and retry support
//   - OpenRouterError: API error with status code and error code
//
// # Usage
//
//	client := cloud.NewOpenRouterClient(apiKey)
//	reply, err := client.Chat(ctx, msgs, backend.Options{Model: "gpt-4o", Provider: "OpenAI"})
package cloud
