// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigchat configuration.
type Config struct {
	Chat      ChatConfig      `toml:"chat"`
	Readiness ReadinessConfig `toml:"readiness"`
	Ollama    OllamaConfig    `toml:"ollama"`
	Cloud     CloudConfig     `toml:"cloud"`
	UI        UIConfig        `toml:"ui"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ChatConfig holds conversation settings.
type ChatConfig struct {
	// DefaultModel is the catalog id selected at startup
	DefaultModel string `toml:"default_model"`

	// SystemPrompt leads every request
	SystemPrompt string `toml:"system_prompt"`

	// IncludeNotices sends model-switch notices to the backend
	IncludeNotices bool `toml:"include_notices"`

	// CatalogPath points at a JSON model catalog; empty uses the built-in one
	CatalogPath string `toml:"catalog_path,omitempty"`

	// RequestTimeoutSecs bounds a single backend call
	RequestTimeoutSecs int `toml:"request_timeout_secs"`

	// Offline restricts chat to local models on a loopback Ollama
	Offline bool `toml:"offline"`
}

// ReadinessConfig holds backend polling settings.
type ReadinessConfig struct {
	// PollIntervalMs is the delay between readiness probes
	PollIntervalMs int `toml:"poll_interval_ms"`
}

// OllamaConfig holds local backend settings.
type OllamaConfig struct {
	// URL is the Ollama API base URL
	URL string `toml:"url"`

	// Disabled turns the local backend off
	Disabled bool `toml:"disabled"`
}

// CloudConfig holds OpenRouter settings.
type CloudConfig struct {
	// OpenRouterKey is the API key; empty disables the cloud backend
	OpenRouterKey string `toml:"openrouter_key"`

	// OpenRouterURL overrides the API base URL
	OpenRouterURL string `toml:"openrouter_url"`

	// SiteName is sent as X-Title
	SiteName string `toml:"site_name"`

	// MaxRetries is the number of attempts for 429 and 5xx responses
	MaxRetries int `toml:"max_retries"`

	// RequestsPerSecond is the client-side rate limit (burst is twice this)
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	// Markdown renders assistant replies with glamour
	Markdown bool `toml:"markdown"`

	// Theme is "auto", "dark", "light" or "notty"
	Theme string `toml:"theme"`

	// WordWrap is the markdown wrap width (0 = terminal width)
	WordWrap int `toml:"word_wrap"`
}

// LoggingConfig holds operator log settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level"`

	// File is the log path; empty uses ~/.rigchat/rigchat.log
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			DefaultModel:       "gpt-4o",
			SystemPrompt:       "Assistant provides helpful insight",
			RequestTimeoutSecs: 120,
		},
		Readiness: ReadinessConfig{
			PollIntervalMs: 300,
		},
		Ollama: OllamaConfig{
			URL: "http://127.0.0.1:11434",
		},
		Cloud: CloudConfig{
			OpenRouterURL:     "https://openrouter.ai/api/v1",
			SiteName:          "rigchat",
			MaxRetries:        3,
			RequestsPerSecond: 2,
		},
		UI: UIConfig{
			Markdown: true,
			Theme:    "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Chat.DefaultModel == "" {
		c.Chat.DefaultModel = d.Chat.DefaultModel
	}
	if c.Chat.SystemPrompt == "" {
		c.Chat.SystemPrompt = d.Chat.SystemPrompt
	}
	if c.Chat.RequestTimeoutSecs == 0 {
		c.Chat.RequestTimeoutSecs = d.Chat.RequestTimeoutSecs
	}
	if c.Readiness.PollIntervalMs == 0 {
		c.Readiness.PollIntervalMs = d.Readiness.PollIntervalMs
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = d.Ollama.URL
	}
	if c.Cloud.OpenRouterURL == "" {
		c.Cloud.OpenRouterURL = d.Cloud.OpenRouterURL
	}
	if c.Cloud.MaxRetries == 0 {
		c.Cloud.MaxRetries = d.Cloud.MaxRetries
	}
	if c.Cloud.RequestsPerSecond == 0 {
		c.Cloud.RequestsPerSecond = d.Cloud.RequestsPerSecond
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// PollInterval returns the readiness polling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Readiness.PollIntervalMs) * time.Millisecond
}

// RequestTimeout returns the backend call timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Chat.RequestTimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads ~/.rigchat/config.toml when it exists, applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file: %w", err)
		}
	} else if !os.IsNotExist(statErr) {
		return nil, fmt.Errorf("failed to stat config: %w", statErr)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration as TOML with 0600 permissions, since the
// file may hold an API key.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# rigchat configuration file\n")
	buf.WriteString("# Environment variables (RIGCHAT_*) override these values.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String renders the configuration as TOML with the API key masked.
func (c *Config) String() string {
	masked := *c
	if masked.Cloud.OpenRouterKey != "" {
		masked.Cloud.OpenRouterKey = "********"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes = map[string]bool{"auto": true, "dark": true, "light": true, "notty": true}
	validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Readiness.PollIntervalMs < 10 || c.Readiness.PollIntervalMs > 60000 {
		errs = append(errs, ValidationError{
			Field:   "readiness.poll_interval_ms",
			Message: fmt.Sprintf("must be between 10 and 60000, got %d", c.Readiness.PollIntervalMs),
		})
	}
	if c.Cloud.MaxRetries < 1 || c.Cloud.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "cloud.max_retries",
			Message: fmt.Sprintf("must be between 1 and 10, got %d", c.Cloud.MaxRetries),
		})
	}
	if c.Cloud.RequestsPerSecond <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cloud.requests_per_second",
			Message: "must be positive",
		})
	}
	if c.Chat.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.request_timeout_secs",
			Message: "must not be negative",
		})
	}
	for field, raw := range map[string]string{
		"ollama.url":           c.Ollama.URL,
		"cloud.openrouter_url": c.Cloud.OpenRouterURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid URL '%s'", raw),
			})
		}
	}
	if c.UI.Theme != "" && !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light, notty", c.UI.Theme),
		})
	}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RIGCHAT_MODEL: overrides chat.default_model
//   - RIGCHAT_SYSTEM_PROMPT: overrides chat.system_prompt
//   - RIGCHAT_CATALOG: overrides chat.catalog_path
//   - RIGCHAT_OLLAMA_URL: overrides ollama.url
//   - RIGCHAT_OPENROUTER_KEY: overrides cloud.openrouter_key (OPENROUTER_API_KEY also works)
//   - RIGCHAT_POLL_MS: overrides readiness.poll_interval_ms
//   - RIGCHAT_LOG_LEVEL: overrides logging.level
//   - RIGCHAT_OFFLINE: overrides chat.offline ("1", "true", ...)
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("RIGCHAT_MODEL"); model != "" {
		c.Chat.DefaultModel = model
	}
	if prompt := os.Getenv("RIGCHAT_SYSTEM_PROMPT"); prompt != "" {
		c.Chat.SystemPrompt = prompt
	}
	if catalog := os.Getenv("RIGCHAT_CATALOG"); catalog != "" {
		c.Chat.CatalogPath = catalog
	}
	if url := os.Getenv("RIGCHAT_OLLAMA_URL"); url != "" {
		c.Ollama.URL = url
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.Cloud.OpenRouterKey = key
	}
	if key := os.Getenv("RIGCHAT_OPENROUTER_KEY"); key != "" {
		c.Cloud.OpenRouterKey = key
	}
	if ms := os.Getenv("RIGCHAT_POLL_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil {
			c.Readiness.PollIntervalMs = n
		}
	}
	if level := os.Getenv("RIGCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("RIGCHAT_OFFLINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Chat.Offline = b
		}
	}
}
