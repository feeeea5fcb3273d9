// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline implements local-only operation.
//
// With offline mode enabled the cloud backend is never constructed and the
// Ollama endpoint must resolve to a loopback address, so no conversation
// text leaves the machine.
//
// # Usage
//
//	offline.SetOfflineMode(cfg.Chat.Offline)
//
//	if err := offline.ValidateOllamaURL(cfg.Ollama.URL); err != nil {
//		return err
//	}
//	if offline.CheckCloudAllowed() == nil {
//		// build the OpenRouter client
//	}
package offline
