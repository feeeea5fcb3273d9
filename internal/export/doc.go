// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to a file.
//
// # Supported Formats
//
//   - Markdown: human-readable, one heading per turn
//   - JSON: machine-readable with session metadata
//
// # Usage
//
//	t := export.FromSnapshot(sess.ID(), sess.Snapshot())
//	path, err := export.ExportToFile(t, export.NewMarkdownExporter(nil), nil)
//
// Exports are one-shot. Nothing is ever read back into a session.
package export
