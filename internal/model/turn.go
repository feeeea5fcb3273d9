// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SPEAKER
// =============================================================================

// Speaker identifies who authored a turn.
type Speaker int

const (
	// SpeakerUser is text typed by the user.
	SpeakerUser Speaker = iota

	// SpeakerAssistant is a reply produced by the backend.
	SpeakerAssistant

	// SpeakerNotice is a control-plane event (model switch and the like).
	// Notices render in the assistant lane but are not model output.
	SpeakerNotice
)

// String returns the lowercase speaker name.
func (s Speaker) String() string {
	switch s {
	case SpeakerUser:
		return "user"
	case SpeakerAssistant:
		return "assistant"
	case SpeakerNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Role returns the backend role used when the turn is serialized.
// Notices are sent as assistant content when they are sent at all.
func (s Speaker) Role() string {
	if s == SpeakerUser {
		return RoleUser
	}
	return RoleAssistant
}

// Backend roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// =============================================================================
// TURN
// =============================================================================

// Turn is one message in the transcript. Turns are values; the store never
// hands out pointers into its backing slice.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`

	// Seq orders turns and is never reused within a store.
	Seq uint64 `json:"seq"`
}

// IsUser reports whether the turn was authored by the user.
func (t Turn) IsUser() bool {
	return t.Speaker == SpeakerUser
}

// IsNotice reports whether the turn is a control-plane notice.
func (t Turn) IsNotice() bool {
	return t.Speaker == SpeakerNotice
}
