// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Command tree for rigchat CLI.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds persistent flags.
type rootOptions struct {
	configPath string
	model      string
	noMarkdown bool
	logLevel   string
	offline    bool
}

// NewRootCommand builds the rigchat command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "rigchat",
		Short:         "Chat with local and cloud LLMs from the terminal",
		Long:          "rigchat lets you converse with a selectable model, one request at a time.\nLocal models run on Ollama; cloud models go through OpenRouter.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.rigchat/config.toml)")
	flags.StringVarP(&opts.model, "model", "m", "", "model id to start with")
	flags.BoolVar(&opts.noMarkdown, "no-markdown", false, "print replies as plain text")
	flags.StringVar(&opts.logLevel, "log-level", "", "operator log level (debug, info, warn, error)")
	flags.BoolVar(&opts.offline, "offline", false, "use local models only")

	root.AddCommand(
		&cobra.Command{
			Use:   "chat",
			Short: "Start an interactive chat session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runChat(cmd.Context(), opts)
			},
		},
		newAskCommand(opts),
		newModelsCommand(opts),
		newConfigCommand(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "rigchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			},
		},
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return ExitCode(err)
	}
	return ExitSuccess
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	if opts.model != "" {
		cfg.Chat.DefaultModel = opts.model
	}
	if opts.offline {
		cfg.Chat.Offline = true
	}
	if opts.noMarkdown {
		cfg.UI.Markdown = false
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	return cfg, nil
}
