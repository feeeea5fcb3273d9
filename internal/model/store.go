// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"

	"github.com/jeranaias/rigchat/internal/backend"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the ordered transcript of a session. Insertion order is the
// chronological order and the order sent to the backend.
//
// The Store is thread-safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	turns   []Turn
	lastSeq uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{turns: make([]Turn, 0, 16)}
}

// Append records a new turn and returns it. Text is stored verbatim;
// callers validate input before it reaches the store.
func (s *Store) Append(speaker Speaker, text string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeq++
	t := Turn{Speaker: speaker, Text: text, Seq: s.lastSeq}
	s.turns = append(s.turns, t)
	return t
}

// Snapshot returns a copy of the transcript.
func (s *Store) Snapshot() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Clear drops every turn. Sequence numbers keep increasing afterwards.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = s.turns[:0:0]
}

// =============================================================================
// PAYLOAD
// =============================================================================

// PayloadOptions controls how the transcript is serialized.
//
// A payload has len(turns)+2 entries only when IncludeNotices is set or the
// transcript holds no notices; each skipped notice shortens it by one.
type PayloadOptions struct {
	// IncludeNotices sends notice turns as assistant messages.
	IncludeNotices bool
}

// ToBackendPayload serializes the transcript for a chat request: the system
// prompt, every turn in order, then newUserText as the final user message.
func (s *Store) ToBackendPayload(systemPrompt, newUserText string, opts PayloadOptions) []backend.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]backend.Message, 0, len(s.turns)+2)
	msgs = append(msgs, backend.Message{Role: RoleSystem, Content: systemPrompt})
	for _, t := range s.turns {
		if t.IsNotice() && !opts.IncludeNotices {
			continue
		}
		msgs = append(msgs, backend.Message{Role: t.Speaker.Role(), Content: t.Text})
	}
	msgs = append(msgs, backend.Message{Role: RoleUser, Content: newUserText})
	return msgs
}
