// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/securechat-tui/internal/ui/styles"
	"github.com/jeranaias/securechat-tui/internal/util"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// SidebarItem is one session row.
type SidebarItem struct {
	ID      string
	Name    string
	Pending bool
}

// Sidebar holds what the sidebar renders. It is rebuilt from a store
// snapshot on every view.
type Sidebar struct {
	Title     string
	User      string
	Items     []SidebarItem
	ActiveID  string
	Cursor    int
	Focused   bool
	OnChat    bool
	Collapsed bool
	Tokens    int64
	Cost      float64
}

// View renders the sidebar at the given height.
func (s Sidebar) View(theme *styles.Theme, height int) string {
	if s.Collapsed {
		return theme.Sidebar.Copy().
			Width(styles.SidebarCollapsedWidth - 1).
			Height(height).
			Render("≡")
	}

	inner := styles.SidebarWidth - 3
	var b strings.Builder

	b.WriteString(theme.SidebarTitle.Render(util.TruncateWidth(s.Title, inner)))
	b.WriteString("\n")

	overview, chat := theme.SidebarNav, theme.SidebarNav
	if s.OnChat {
		chat = theme.SidebarNavActive
	} else {
		overview = theme.SidebarNavActive
	}
	b.WriteString(overview.Render("Overview"))
	b.WriteString("\n")
	b.WriteString(chat.Render("Chat"))
	b.WriteString("\n\n")

	for i, item := range s.Items {
		name := item.Name
		if item.Pending {
			name = "* " + name
		}
		line := util.PadRight(util.TruncateWidth(name, inner), inner)

		style := theme.SessionItem
		switch {
		case s.Focused && i == s.Cursor:
			style = theme.SessionItemCursor
		case item.ID == s.ActiveID && s.OnChat:
			style = theme.SessionItemActive
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	if len(s.Items) == 0 {
		b.WriteString(theme.SidebarMeta.Render("No chats yet"))
		b.WriteString("\n")
	}

	footer := strings.Join([]string{
		theme.SidebarMeta.Render(util.TruncateWidth("Logged in as: "+s.User, inner)),
		theme.SidebarMeta.Render(fmt.Sprintf("Total tokens: %s", util.FormatTokens(s.Tokens))),
		theme.SidebarMeta.Render(fmt.Sprintf("Total cost: %s", util.FormatCost(s.Cost))),
	}, "\n")

	body := b.String()
	gap := height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}

	return theme.Sidebar.Copy().
		Width(styles.SidebarWidth - 1).
		Height(height).
		MaxHeight(height).
		Render(body + footer)
}

// Width returns the rendered sidebar width.
func (s Sidebar) Width() int {
	if s.Collapsed {
		return styles.SidebarCollapsedWidth
	}
	return styles.SidebarWidth
}
