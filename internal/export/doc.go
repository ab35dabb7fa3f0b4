// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat session transcripts to disk.
//
// # Key Types
//
//   - Exporter: converts a model.ChatSession to bytes in one format
//   - MarkdownExporter: readable transcript with frontmatter
//   - JSONExporter / YAMLExporter: structured transcript with export metadata
//
// In-flight placeholders are never exported.
//
// # Usage
//
//	exp, err := export.ForFormat("md", opts)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(&sess, exp, opts)
package export
