// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript and
// the model catalog.
//
// # Key Types
//
//   - Turn: one immutable entry in the transcript (user, assistant or notice)
//   - Store: ordered, append-only log of turns with payload serialization
//   - Descriptor: catalog entry for a selectable model (id, name, provider)
//   - Registry: read-only catalog with first-entry fallback
//
// # Usage
//
//	store := model.NewStore()
//	store.Append(model.SpeakerUser, "hello")
//	payload := store.ToBackendPayload("Assistant provides helpful insight", "next", model.PayloadOptions{})
//
//	reg := model.DefaultRegistry()
//	desc := reg.Resolve("gpt-4o")
//	fmt.Printf("%s (%s)\n", desc.Name, desc.Provider)
package model
