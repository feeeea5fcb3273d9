// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the rigchat command line.
//
// Commands:
//
//	rigchat [chat]            Interactive chat (default)
//	rigchat ask "<prompt>"    One-shot question
//	rigchat models            List the model catalog
//	rigchat config init|show  Manage ~/.rigchat/config.toml
//
// The REPL is a thin presentation layer over chat.Session: it renders
// snapshots and results, and forwards input and /model switches.
package cli
