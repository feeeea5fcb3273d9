// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package readiness tracks when the chat backend becomes usable.
//
// Readiness is a one-shot Signal: it goes from not ready to ready exactly
// once and never goes back. A Monitor polls a backend.Prober on a fixed
// interval and resolves the signal on the first successful probe, then stops
// polling for good. Hosts that learn about readiness some other way can
// resolve the signal directly; the monitor notices and stops as well.
//
// The monitor's goroutine is the only long-lived background activity of a
// chat session. Stop cancels it and waits for it to exit.
package readiness
