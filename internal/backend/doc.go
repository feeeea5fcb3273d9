// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend defines the contract between the chat core and the
// services that perform inference.
//
// A backend receives the serialized conversation plus Options naming the
// model and returns the raw JSON reply. The reply shape differs between
// services (a bare string, an Ollama {"message":{"content":...}} object, an
// OpenAI-style {"choices":[...]} object), so Normalize extracts the text.
//
// Router fans requests out to the local Ollama client or the cloud client
// depending on the model's provider, and reports readiness when any of its
// backends answers a ping.
package backend
