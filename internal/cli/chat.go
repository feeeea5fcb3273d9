// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command for rigchat CLI.
//
// Command: chat (also the default when no command is given)
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /model [id]         Show or switch model
//   /models             List the catalog
//   /clear, /c          Clear conversation history
//   /history            Show conversation history
//   /status, /s         Show session status
//   /export [file]      Save the transcript (.md or .json)
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/util"
)

// startupWait is how long the REPL waits for readiness before showing the
// prompt anyway.
const startupWait = 3 * time.Second

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads previous input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil || config.EnsureConfigDir() != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(configDir, "chat_history")}

	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads a line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close persists history with owner-only permissions and restores the
// terminal.
func (c *ChatCLI) Close() {
	var buf strings.Builder
	if _, err := c.line.WriteHistory(&buf); err == nil {
		_ = util.AtomicWriteFile(c.historyFile, []byte(buf.String()), 0600)
	}
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// repl dispatches input lines to the session and prints results.
type repl struct {
	sess   *chat.Session
	out    io.Writer
	render *Renderer
	tty    bool
}

// runChat starts the interactive session.
func runChat(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	sess, err := app.NewSession(nil)
	if err != nil {
		return err
	}
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Close()

	r := &repl{
		sess:   sess,
		out:    os.Stdout,
		render: NewRenderer(cfg.UI, IsStdoutTTY()),
		tty:    IsStdoutTTY(),
	}

	r.banner(ctx)

	input := NewChatCLI()
	defer input.Close()

	for {
		line, err := input.ReadInput(r.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		if r.handleLine(ctx, line) {
			return nil
		}
	}
}

// banner prints the title and waits briefly for the backend.
func (r *repl) banner(ctx context.Context) {
	fmt.Fprintln(r.out, TitleStyle.Render("AI Chat With Models"))

	if !r.sess.Ready() {
		fmt.Fprintln(r.out, StatusLine(r.sess.Snapshot()))
		waitCtx, cancel := context.WithTimeout(ctx, startupWait)
		_ = r.sess.WaitReady(waitCtx)
		cancel()
	}

	snap := r.sess.Snapshot()
	if snap.Ready {
		fmt.Fprintln(r.out, StatusLine(snap))
	}
	fmt.Fprintln(r.out, DimStyle.Render(emptyHint))
	fmt.Fprintln(r.out, DimStyle.Render(emptySubHint+" Type /help for commands."))
	fmt.Fprintln(r.out, DimStyle.Render(Placeholder(snap)))
}

func (r *repl) prompt() string {
	if r.sess.Ready() {
		return "you › "
	}
	return "… › "
}

// handleLine processes one input line and reports whether to quit.
func (r *repl) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "/") {
		return r.handleCommand(trimmed)
	}

	r.sess.SetDraft(line)
	desc := r.sess.CurrentModel()
	if r.tty && trimmed != "" && r.sess.Ready() {
		fmt.Fprint(r.out, WorkingLine(desc))
	}

	res := r.sess.SubmitDraft(ctx)

	if r.tty && res.Accepted() {
		fmt.Fprint(r.out, "\r\033[K")
	}
	r.printResult(res)
	return false
}

func (r *repl) printResult(res chat.Result) {
	switch res.Status {
	case chat.StatusRejected:
		if msg := RejectionMessage(res.Reason); msg != "" {
			fmt.Fprintln(r.out, msg)
		}
	case chat.StatusReplied:
		fmt.Fprintln(r.out, AssistantStyle.Render(res.Model.Name+":"))
		fmt.Fprintln(r.out, r.render.Reply(res.Reply.Text))
	case chat.StatusFailed:
		// The transcript stays silent; the operator log has the details.
		fmt.Fprintln(r.out, ErrorStyle.Render("Request failed: "+res.Err.Error()))
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (r *repl) handleCommand(line string) bool {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h", "/?":
		r.printHelp()
	case "/model", "/m":
		if len(args) == 0 {
			fmt.Fprint(r.out, ModelList(r.sess.Models(), r.sess.CurrentModel().ID))
			return false
		}
		r.switchModel(args[0])
	case "/models":
		fmt.Fprint(r.out, ModelList(r.sess.Models(), r.sess.CurrentModel().ID))
	case "/clear", "/c":
		if err := r.sess.Clear(); err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
			return false
		}
		fmt.Fprintln(r.out, DimStyle.Render("Conversation cleared."))
	case "/history":
		fmt.Fprint(r.out, HistoryLines(r.sess.Snapshot().Turns, GetTerminalWidth()-12))
	case "/status", "/s":
		r.printStatus()
	case "/export":
		r.export(args)
	default:
		fmt.Fprintln(r.out, ErrorStyle.Render("Unknown command: "+cmd)+DimStyle.Render("  (try /help)"))
	}
	return false
}

func (r *repl) switchModel(id string) {
	desc := r.sess.SwitchModel(id)
	if desc.ID != id {
		fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("Unknown model %q, using %s.", id, desc.ID)))
	}
	turns := r.sess.Snapshot().Turns
	if n := len(turns); n > 0 && turns[n-1].Speaker == model.SpeakerNotice {
		fmt.Fprintln(r.out, NoticeLine(turns[n-1]))
	}
}

func (r *repl) export(args []string) {
	t := export.FromSnapshot(r.sess.ID(), r.sess.Snapshot())
	opts := export.DefaultOptions()

	var (
		path string
		err  error
	)
	if len(args) > 0 {
		path, err = export.ExportToPath(t, export.ExporterFor(args[0], opts), args[0])
	} else {
		path, err = export.ExportToFile(t, export.NewMarkdownExporter(opts), opts)
	}
	if err != nil {
		fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintln(r.out, DimStyle.Render("Saved transcript to "+path))
}

func (r *repl) printStatus() {
	snap := r.sess.Snapshot()
	fmt.Fprintln(r.out, StatusLine(snap))
	fmt.Fprintf(r.out, "  Session: %s\n", r.sess.ID())
	fmt.Fprintf(r.out, "  State:   %s\n", snap.State)
	fmt.Fprintf(r.out, "  Turns:   %d\n", len(snap.Turns))
}

func (r *repl) printHelp() {
	cmds := [][2]string{
		{"/help", "Show this help"},
		{"/model [id]", "Show or switch model"},
		{"/models", "List available models"},
		{"/clear", "Clear conversation history"},
		{"/history", "Show conversation history"},
		{"/status", "Show session status"},
		{"/export [file]", "Save the transcript"},
		{"/quit", "Exit chat"},
	}
	fmt.Fprintln(r.out, TitleStyle.Render("Commands"))
	for _, c := range cmds {
		fmt.Fprintf(r.out, "  %s  %s\n", CommandStyle.Render(fmt.Sprintf("%-15s", c[0])), c[1])
	}
}
