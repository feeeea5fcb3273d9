// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Turn, status and reply formatting for the chat REPL.

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/offline"
	"github.com/jeranaias/rigchat/internal/util"
)

// Banner text shown by the REPL.
const (
	readyText     = "🚀 AI is Ready"
	waitingText   = "🔴 Waiting... AI not ready"
	emptyHint     = "📢 Let's start a conversation. Type a message."
	emptySubHint  = "You can try other listed models to check their behavior."
	historyPrefix = 60
)

// Renderer formats assistant replies, optionally as markdown.
type Renderer struct {
	md *glamour.TermRenderer
}

// NewRenderer creates a renderer for the UI settings. Markdown is only used
// on a terminal; a renderer that fails to initialize falls back to plain text.
func NewRenderer(ui config.UIConfig, tty bool) *Renderer {
	r := &Renderer{}
	if !ui.Markdown || !tty {
		return r
	}

	wrap := ui.WordWrap
	if wrap <= 0 {
		wrap = GetTerminalWidth() - 4
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(GlamourStyle(ui.Theme)),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		r.md = md
	}
	return r
}

// Reply renders assistant text.
func (r *Renderer) Reply(text string) string {
	if r.md != nil {
		if out, err := r.md.Render(text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return text
}

// StatusLine returns the readiness banner and the active model.
func StatusLine(snap chat.Snapshot) string {
	status := WaitingStyle.Render(waitingText)
	if snap.Ready {
		status = ReadyStyle.Render(readyText)
	}
	line := fmt.Sprintf("%s  🤖 Using chat model: %s", status, ModelStyle.Render(snap.Model.Label()))
	if badge := offline.StatusBadge(); badge != "" {
		line += "  " + DimStyle.Render(badge)
	}
	return line
}

// Placeholder returns the hint shown above the prompt.
func Placeholder(snap chat.Snapshot) string {
	if !snap.Ready {
		return "Waiting for AI model to be ready..."
	}
	return fmt.Sprintf("You can ask model %q whatever you want...", snap.Model.Name)
}

// WorkingLine is shown while a request is in flight.
func WorkingLine(desc model.Descriptor) string {
	return DimStyle.Render(fmt.Sprintf("⠋ %s is working ...", desc.Name))
}

// NoticeLine renders a notice turn.
func NoticeLine(turn model.Turn) string {
	return NoticeStyle.Render(turn.Text)
}

// ModelList renders the catalog with the current model marked.
func ModelList(models []model.Descriptor, current string) string {
	var b strings.Builder
	width := 0
	for _, d := range models {
		if w := util.Width(d.ID); w > width {
			width = w
		}
	}
	for _, d := range models {
		marker := "  "
		if d.ID == current {
			marker = ReadyStyle.Render("* ")
		}
		pad := strings.Repeat(" ", width-util.Width(d.ID))
		fmt.Fprintf(&b, "%s%s%s  %s\n", marker, d.ID, pad, d.Label())
	}
	return b.String()
}

// HistoryLines renders one preview line per turn.
func HistoryLines(turns []model.Turn, width int) string {
	if len(turns) == 0 {
		return DimStyle.Render(emptyHint) + "\n"
	}
	if width <= 0 {
		width = historyPrefix
	}

	var b strings.Builder
	for _, t := range turns {
		var who string
		switch {
		case t.IsUser():
			who = UserStyle.Render("you")
		case t.IsNotice():
			who = NoticeStyle.Render("-- ")
		default:
			who = AssistantStyle.Render("ai ")
		}
		fmt.Fprintf(&b, "%4d %s  %s\n", t.Seq, who, util.Preview(t.Text, width))
	}
	return b.String()
}

// RejectionMessage explains a rejected submit; empty input is silent.
func RejectionMessage(reason chat.Reason) string {
	switch reason {
	case chat.ReasonNotReady:
		return WaitingStyle.Render(waitingText)
	case chat.ReasonBusy:
		return DimStyle.Render("A request is already in flight.")
	default:
		return ""
	}
}
