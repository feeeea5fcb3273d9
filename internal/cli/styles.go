// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for rigchat CLI output.

package cli

import (
	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// TitleStyle is used for banners and section headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// ReadyStyle marks a ready backend
	ReadyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // Green

	// WaitingStyle marks a backend that is not ready yet
	WaitingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203")) // Red

	// ModelStyle highlights the active model
	ModelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange

	// UserStyle prefixes user turns
	UserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	// AssistantStyle prefixes assistant turns
	AssistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// NoticeStyle renders notice turns
	NoticeStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("141")) // Purple

	// DimStyle is used for hints and secondary info
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	// ErrorStyle is used for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// CommandStyle highlights slash commands in help output
	CommandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)
