// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Preview flattens s to one line and truncates it to maxWidth terminal
// cells, appending "..." when cut. Wide runes (CJK, emoji) count as two.
func Preview(s string, maxWidth int) string {
	flat := strings.Join(strings.Fields(s), " ")
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(flat, maxWidth, "...")
}

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	return runewidth.StringWidth(s)
}
