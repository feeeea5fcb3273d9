// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/util"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript has no turns")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the exported view of a session.
type Transcript struct {
	SessionID  string           `json:"session_id"`
	Model      model.Descriptor `json:"model"`
	Turns      []model.Turn     `json:"turns"`
	ExportedAt time.Time        `json:"exported_at"`
}

// FromSnapshot builds a transcript from a session snapshot.
func FromSnapshot(sessionID string, snap chat.Snapshot) *Transcript {
	return &Transcript{
		SessionID:  sessionID,
		Model:      snap.Model,
		Turns:      snap.Turns,
		ExportedAt: time.Now(),
	}
}

// visibleTurns drops notices unless includeNotices is set.
func (t *Transcript) visibleTurns(includeNotices bool) []model.Turn {
	if includeNotices {
		return t.Turns
	}
	out := make([]model.Turn, 0, len(t.Turns))
	for _, turn := range t.Turns {
		if !turn.IsNotice() {
			out = append(out, turn)
		}
	}
	return out
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript to a file format.
type Exporter interface {
	// Export converts a transcript to the target format and returns the content.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where generated file names are placed.
	// Default: current working directory
	OutputDir string

	// IncludeMetadata adds a header with session id, model and date.
	IncludeMetadata bool

	// IncludeNotices keeps model-switch notices in the output.
	IncludeNotices bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
		IncludeNotices:  true,
	}
}

// ExporterFor picks an exporter from a file name's extension. Unknown
// extensions get Markdown.
func ExporterFor(path string, opts *Options) Exporter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONExporter(opts)
	}
	return NewMarkdownExporter(opts)
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile writes the transcript to a generated file name in
// opts.OutputDir and returns the path.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	filename := fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(t.Model.ID),
		t.ExportedAt.Format("20060102_150405"),
		exporter.FileExtension(),
	)
	return ExportToPath(t, exporter, filepath.Join(opts.OutputDir, filename))
}

// ExportToPath writes the transcript to path, creating parent directories.
func ExportToPath(t *Transcript, exporter Exporter, path string) (string, error) {
	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names on
// Windows or Unix.
func sanitizeFilename(s string) string {
	const maxLen = 50
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "conversation"
	}
	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
