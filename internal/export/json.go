// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonTurn struct {
	Seq     uint64 `json:"seq"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type jsonTranscript struct {
	SessionID  string            `json:"session_id,omitempty"`
	Model      *model.Descriptor `json:"model,omitempty"`
	ExportedAt string            `json:"exported_at,omitempty"`
	Turns      []jsonTurn        `json:"turns"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	turns := t.visibleTurns(e.options.IncludeNotices)
	if len(turns) == 0 {
		return nil, ErrEmptyTranscript
	}

	out := jsonTranscript{Turns: make([]jsonTurn, len(turns))}
	if e.options.IncludeMetadata {
		desc := t.Model
		out.SessionID = t.SessionID
		out.Model = &desc
		out.ExportedAt = t.ExportedAt.Format(time.RFC3339)
	}
	for i, turn := range turns {
		out.Turns[i] = jsonTurn{Seq: turn.Seq, Speaker: turn.Speaker.String(), Text: turn.Text}
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
