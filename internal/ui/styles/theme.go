// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// SidebarWidth is the expanded sidebar width in columns.
const SidebarWidth = 30

// SidebarCollapsedWidth is the sidebar width when collapsed.
const SidebarCollapsedWidth = 4

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarNav        lipgloss.Style
	SidebarNavActive  lipgloss.Style
	SessionItem       lipgloss.Style
	SessionItemActive lipgloss.Style
	SessionItemCursor lipgloss.Style
	SidebarMeta       lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	ChatHeader       lipgloss.Style
	ChatHeaderUsage  lipgloss.Style
	UserLabel        lipgloss.Style
	AssistantLabel   lipgloss.Style
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	PendingMessage   lipgloss.Style
	FailedMessage    lipgloss.Style
	MessageMeta      lipgloss.Style
	Prompt           lipgloss.Style
	JumpHint         lipgloss.Style

	// ==========================================================================
	// COMPOSER AND OVERLAYS
	// ==========================================================================

	Composer        lipgloss.Style
	ComposerBusy    lipgloss.Style
	OverlayBox      lipgloss.Style
	OverlayTitle    lipgloss.Style
	OverlayDanger   lipgloss.Style
	OverlayHint     lipgloss.Style
	Star            lipgloss.Style
	StarEmpty       lipgloss.Style

	// ==========================================================================
	// STATUS LINE AND PAGES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	PageTitle    lipgloss.Style
	NotFound     lipgloss.Style

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Unknown
// modes behave like auto.
func NewTheme(mode string) *Theme {
	isDark := termenv.HasDarkBackground()
	switch strings.ToLower(mode) {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		MarginBottom(1)

	t.SidebarNav = lipgloss.NewStyle().
		Foreground(Sky)

	t.SidebarNavActive = t.SidebarNav.Copy().
		Bold(true).
		Underline(true)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SessionItemActive = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.SessionItemCursor = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Transcript
	t.ChatHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.ChatHeaderUsage = lipgloss.NewStyle().
		Foreground(Amber)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.UserMessage = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Sky).
		PaddingLeft(1)

	t.AssistantMessage = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(1)

	t.PendingMessage = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		PaddingLeft(1)

	t.FailedMessage = lipgloss.NewStyle().
		Foreground(Rose).
		PaddingLeft(1)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(1)

	t.Prompt = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.JumpHint = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Sky).
		Padding(0, 1)

	// Composer and overlays
	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo)

	t.ComposerBusy = t.Composer.Copy().
		BorderForeground(Overlay)

	t.OverlayBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 2)

	t.OverlayTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		MarginBottom(1)

	t.OverlayDanger = t.OverlayBox.Copy().
		BorderForeground(Rose)

	t.OverlayHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		MarginTop(1)

	t.Star = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.StarEmpty = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status line and pages
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PageTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		MarginBottom(1)

	t.NotFound = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		Padding(1, 2)

	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Sky).Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	t.Width = width
	t.Height = height
}

// GlamourStyle returns the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}
