// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"time"

	"github.com/jeranaias/rigchat/internal/backend"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string            `json:"model"`             // Model name (e.g., "llama3.2:3b")
	Messages []backend.Message `json:"messages"`          // Conversation history
	Stream   bool              `json:"stream"`            // Always false here
	Options  *Options          `json:"options,omitempty"` // Model parameters
}

// Options contains model parameters for inference.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"` // 0.0-2.0, default 0.8
	NumCtx      int     `json:"num_ctx,omitempty"`     // Context window size
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ModelInfo describes a model installed in Ollama.
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// OllamaError is the error body returned by Ollama.
type OllamaError struct {
	Error string `json:"error"`
}
