// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command for rigchat CLI.
//
// Examples:
//   rigchat ask "What is a goroutine?"
//   rigchat ask -m llama3.2:3b "Summarize this" < notes.txt
//   echo "hello" | rigchat ask

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/chat"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Ask a single question and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := askPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

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
			return runAsk(cmd.Context(), sess, prompt, wait, cmd.OutOrStdout(), NewRenderer(cfg.UI, IsStdoutTTY()))
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "how long to wait for the backend to become ready")
	return cmd
}

// askPrompt joins the arguments, or reads stdin when there are none and
// stdin is not a terminal.
func askPrompt(args []string, stdin io.Reader) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" && stdin != nil && !IsTTY() {
		data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return "", &UsageError{Message: "ask needs a prompt: rigchat ask \"your question\""}
	}
	return prompt, nil
}

// runAsk waits for readiness, submits prompt and prints the reply.
func runAsk(ctx context.Context, sess *chat.Session, prompt string, wait time.Duration, out io.Writer, render *Renderer) error {
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Close()

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := sess.WaitReady(waitCtx); err != nil {
		return fmt.Errorf("backend not ready after %s: %w", wait, err)
	}

	res := sess.SubmitUserMessage(ctx, prompt)
	switch res.Status {
	case chat.StatusReplied:
		fmt.Fprintln(out, render.Reply(res.Reply.Text))
		return nil
	case chat.StatusFailed:
		return fmt.Errorf("%s: %w", res.Model.Label(), res.Err)
	default:
		return fmt.Errorf("request rejected: %s", res.Reason)
	}
}
