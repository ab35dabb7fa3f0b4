// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/securechat-tui/internal/ui/styles"
)

func TestToastManager_NewestFirstAndCapped(t *testing.T) {
	m := NewToastManager()
	m.Status("one")
	m.Warning("two")
	m.Success("three")
	m.Error("four")

	assert.Equal(t, 3, m.Len())
	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "four", cur.Message)
	assert.Equal(t, ToastError, cur.Kind)
	assert.Equal(t, ErrorToastDuration, cur.Duration)
}

func TestToastManager_Sweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.now = func() time.Time { return now }

	m.Status("short")
	m.Error("long")

	now = now.Add(DefaultToastDuration)
	m.Sweep()
	require.Equal(t, 1, m.Len())
	cur, _ := m.Current()
	assert.Equal(t, "long", cur.Message)

	now = now.Add(ErrorToastDuration)
	m.Sweep()
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestToast_Render(t *testing.T) {
	assert.Contains(t, Toast{Kind: ToastError, Message: "x"}.Render(), styles.StatusIndicators.Error)
	assert.Contains(t, Toast{Kind: ToastStatus, Message: "x"}.Render(), styles.StatusIndicators.Info)
}

func TestMarkdownRenderer(t *testing.T) {
	r := NewMarkdownRenderer("dark")
	assert.Equal(t, "**raw**", r.Render("**raw**", true), "no width set means plain text")

	r.SetWidth(60)
	out := r.Render("# Title\n\nSome *text*.", true)
	assert.Contains(t, out, "Title")
	assert.NotContains(t, out, "*text*")
	assert.Len(t, r.cache, 1)

	r.Render("streaming", false)
	assert.Len(t, r.cache, 1, "uncached renders stay out of the cache")

	r.SetWidth(80)
	assert.Empty(t, r.cache, "a width change drops the cache")
}

func TestSidebar_View(t *testing.T) {
	theme := styles.NewTheme(styles.ModeDark)
	s := Sidebar{
		Title: "SecureChat",
		User:  "Ada Lovelace",
		Items: []SidebarItem{
			{ID: "a", Name: "Chat 1"},
			{ID: "b", Name: "A rather long session name that will not fit", Pending: true},
		},
		ActiveID: "a",
		OnChat:   true,
		Tokens:   12345,
		Cost:     1.5,
	}

	out := s.View(theme, 20)
	assert.Contains(t, out, "Logged in as: Ada Lovelace")
	assert.Contains(t, out, "Total tokens: 12,345")
	assert.Contains(t, out, "Total cost: $1.50")
	assert.Contains(t, out, "Chat 1")
	assert.Contains(t, out, "* A rather")
	assert.Equal(t, styles.SidebarWidth, s.Width())

	s.Collapsed = true
	assert.Equal(t, styles.SidebarCollapsedWidth, s.Width())
	assert.NotContains(t, s.View(theme, 20), "Logged in as")
}

func TestSidebar_Empty(t *testing.T) {
	out := Sidebar{Title: "SecureChat", User: "u"}.View(styles.NewTheme(styles.ModeDark), 15)
	assert.Contains(t, out, "No chats yet")
}

func TestRenderStars(t *testing.T) {
	theme := styles.NewTheme(styles.ModeDark)
	out := RenderStars(theme, 3, 5)
	assert.Equal(t, 3, strings.Count(out, "★"))
	assert.Equal(t, 2, strings.Count(out, "☆"))

	assert.Equal(t, 5, strings.Count(RenderStars(theme, 9, 5), "★"))
	assert.Equal(t, 5, strings.Count(RenderStars(theme, -1, 5), "☆"))
}
