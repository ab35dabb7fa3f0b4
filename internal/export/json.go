// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/securechat-tui/internal/model"
)

// document is the structured export shape shared by the JSON and YAML exporters.
type document struct {
	Generator  string            `json:"generator" yaml:"generator"`
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Session    model.ChatSession `json:"session" yaml:"session"`
}

func newDocument(sess *model.ChatSession, opts *Options) document {
	out := sess.Clone()
	out.Messages = settled(out.Messages)
	return document{
		Generator:  "securechat",
		ExportedAt: opts.now(),
		Session:    out,
	}
}

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports sessions to JSON format.
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

// Export converts a session to indented JSON.
func (e *JSONExporter) Export(sess *model.ChatSession) ([]byte, error) {
	if sess == nil {
		return nil, ErrNilSession
	}
	return json.MarshalIndent(newDocument(sess, e.options), "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
