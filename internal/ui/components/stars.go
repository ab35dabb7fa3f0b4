// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/securechat-tui/internal/ui/styles"
)

// RenderStars renders a rating as filled and empty stars out of max.
func RenderStars(theme *styles.Theme, rating, max int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > max {
		rating = max
	}
	var b strings.Builder
	b.WriteString(theme.Star.Render(strings.Repeat("★ ", rating)))
	b.WriteString(theme.StarEmpty.Render(strings.Repeat("☆ ", max-rating)))
	return strings.TrimRight(b.String(), " ")
}
