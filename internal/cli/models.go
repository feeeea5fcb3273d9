// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Model catalog listing for rigchat CLI.

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/ollama"
)

func newModelsCommand(opts *rootOptions) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models you can chat with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			app, err := NewApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("Model catalog"))
			fmt.Fprint(out, ModelList(app.Registry.All(), app.Registry.Resolve(cfg.Chat.DefaultModel).ID))

			if !local {
				return nil
			}
			if app.Ollama == nil {
				return fmt.Errorf("the Ollama backend is disabled in the configuration")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			return listInstalled(ctx, app.Ollama, out)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "also list models installed in Ollama")
	return cmd
}

// listInstalled prints the models reported by Ollama.
func listInstalled(ctx context.Context, client *ollama.Client, out io.Writer) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list Ollama models at %s: %w", client.BaseURL(), err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, TitleStyle.Render("Installed in Ollama"))
	if len(models) == 0 {
		fmt.Fprintln(out, DimStyle.Render("  none (try: ollama pull llama3.2:3b)"))
		return nil
	}
	for _, m := range models {
		fmt.Fprintf(out, "  %-28s %8s\n", m.Name, humanize.Bytes(uint64(m.Size)))
	}
	return nil
}
