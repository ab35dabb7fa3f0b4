// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/securechat-tui/internal/logger"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// MarkdownRenderer renders assistant answers with glamour. Renderers are
// rebuilt only when the wrap width changes, and finished messages are cached
// by content so scrolling does not re-render them.
type MarkdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

// NewMarkdownRenderer creates a renderer for a glamour standard style ("dark" or "light").
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{
		style: style,
		cache: make(map[string]string),
	}
}

// SetWidth sets the word wrap width. A change drops the cache.
func (r *MarkdownRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width && r.renderer != nil {
		return
	}
	r.width = width
	r.cache = make(map[string]string)

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("MARKDOWN_RENDERER_UNAVAILABLE")
		r.renderer = nil
		return
	}
	r.renderer = tr
}

// Render renders content. Plain text is returned when glamour fails.
// Only finished content should be cached; streaming text changes every frame.
func (r *MarkdownRenderer) Render(content string, cache bool) string {
	if r.renderer == nil {
		return content
	}
	if cache {
		if out, ok := r.cache[content]; ok {
			return out
		}
	}

	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")
	if cache {
		r.cache[content] = out
	}
	return out
}
