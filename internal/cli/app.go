// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring from configuration to backends, logger and session.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/rigchat/internal/backend"
	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/offline"
	"github.com/jeranaias/rigchat/internal/ollama"
)

// App holds the long-lived objects built from configuration.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *model.Registry
	Router   *backend.Router

	// Ollama and Cloud are nil when the backend is disabled.
	Ollama *ollama.Client
	Cloud  *cloud.OpenRouterClient
}

// NewApp builds backends, the catalog and the operator logger.
func NewApp(cfg *config.Config) (*App, error) {
	offline.SetOfflineMode(cfg.Chat.Offline)

	registry := model.DefaultRegistry()
	if cfg.Chat.CatalogPath != "" {
		r, err := model.LoadCatalog(cfg.Chat.CatalogPath)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		registry = r
	}
	if offline.IsOfflineMode() {
		r, err := model.NewRegistry(offline.FilterModels(registry.All()))
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("offline mode: %w", err)}
		}
		registry = r
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = zap.NewNop()
	}

	app := &App{Config: cfg, Logger: logger, Registry: registry}

	// Interfaces stay nil for disabled backends; a typed nil pointer would
	// look configured to the router.
	var local, remote backend.Backend
	if !cfg.Ollama.Disabled {
		if err := offline.ValidateOllamaURL(cfg.Ollama.URL); err != nil {
			return nil, &ConfigError{Err: err}
		}
		app.Ollama = ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL: cfg.Ollama.URL,
			Timeout: cfg.RequestTimeout(),
		})
		local = app.Ollama
	}
	if cfg.Cloud.OpenRouterKey != "" && offline.CheckCloudAllowed() == nil {
		app.Cloud = cloud.NewOpenRouterClient(cfg.Cloud.OpenRouterKey).
			WithBaseURL(cfg.Cloud.OpenRouterURL).
			WithTimeout(cfg.RequestTimeout()).
			WithSiteName(cfg.Cloud.SiteName).
			WithMaxRetries(cfg.Cloud.MaxRetries).
			WithRateLimit(cfg.Cloud.RequestsPerSecond, rateBurst(cfg.Cloud.RequestsPerSecond))
		remote = app.Cloud
		logger.Debug("openrouter configured",
			zap.String("key", app.Cloud.APIKeyMasked()),
			zap.Int("max_retries", cfg.Cloud.MaxRetries))
	}
	app.Router = backend.NewRouter(local, remote)

	logger.Info("rigchat started",
		zap.String("version", Version),
		zap.Bool("ollama", app.Ollama != nil),
		zap.Bool("cloud", app.Cloud != nil),
		zap.Bool("offline", offline.IsOfflineMode()),
		zap.Int("catalog", registry.Len()))
	return app, nil
}

// rateBurst allows short bursts of twice the steady request rate.
func rateBurst(perSecond float64) int {
	if b := int(2 * perSecond); b > 1 {
		return b
	}
	return 1
}

// NewSession creates a chat session wired to the app's router.
func (a *App) NewSession(onReady func()) (*chat.Session, error) {
	return chat.NewSession(chat.Options{
		Registry:       a.Registry,
		Backend:        a.Router,
		Prober:         a.Router,
		DefaultModel:   a.Config.Chat.DefaultModel,
		SystemPrompt:   a.Config.Chat.SystemPrompt,
		IncludeNotices: a.Config.Chat.IncludeNotices,
		RequestTimeout: a.Config.RequestTimeout(),
		PollInterval:   a.Config.PollInterval(),
		Logger:         a.Logger,
		OnReady:        onReady,
	})
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Logger.Sync()
}

// NewLogger builds a JSON file logger. Logs never go to the terminal so the
// REPL output stays clean.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	path := cfg.File
	if path == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "rigchat.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
