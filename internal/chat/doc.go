// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation session and its request
// lifecycle.
//
// # Key Types
//
//   - Controller: single-flight request state machine (Idle, Sending,
//     SettledSuccess, SettledError)
//   - Result: typed outcome of a submit (rejected, replied, failed)
//   - Session: the facade presentation layers talk to
//   - Snapshot: read-only view of the session for rendering
//
// # Lifecycle
//
// A submit is rejected without side effects when the backend is not ready,
// the trimmed text is empty, or another request is in flight. An accepted
// submit appends the user turn before the backend call so the transcript
// echoes input immediately. A successful reply is normalized and appended
// as an assistant turn; a failed call is logged and reported in the Result
// but adds nothing to the transcript. Either way the controller returns to
// Idle.
//
// # Usage
//
//	sess, err := chat.NewSession(chat.Options{
//	    Registry: model.DefaultRegistry(),
//	    Backend:  router,
//	    Prober:   router,
//	})
//	if err := sess.Start(ctx); err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	res := sess.SubmitUserMessage(ctx, "hello")
//	if res.Status == chat.StatusFailed {
//	    fmt.Println("request failed:", res.Err)
//	}
package chat
