// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/securechat-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	bodyHeight := max(1, m.height-statusHeight)
	mainWidth := m.mainWidth()

	var main string
	switch {
	case m.notFoundID != "":
		main = m.renderNotFound(mainWidth, bodyHeight)
	case m.page == pageOverview:
		main = m.overview.View()
	default:
		main = m.renderChatPage(mainWidth)
	}

	side := m.sidebar().View(m.theme, bodyHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
}

func (m Model) renderChatPage(width int) string {
	var middle string
	if m.overlay != nil {
		middle = m.placeOverlay(width, m.viewport.Height)
	} else {
		middle = m.viewport.View()
	}

	style := m.theme.Composer
	if m.deps.Guard != nil && m.deps.Guard.Busy() {
		style = m.theme.ComposerBusy
	}
	composer := style.Width(max(1, width-2)).Render(m.composer.View())

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(width), middle, composer)
}

// renderHeader shows the chat name and its running usage.
func (m Model) renderHeader(width int) string {
	sess, ok := m.activeSession()
	if !ok {
		return m.theme.ChatHeader.Width(width).Render("")
	}
	usage := m.theme.ChatHeaderUsage.Render(fmt.Sprintf("Tokens: %s  Cost: %s",
		util.FormatTokens(sess.Tokens), util.FormatCost(sess.Cost)))
	usageWidth := lipgloss.Width(usage)

	name := util.TruncateWidth(sess.Name, max(1, width-usageWidth-2))
	gap := max(1, width-lipgloss.Width(name)-usageWidth)
	return m.theme.ChatHeader.Width(width).Render(name + strings.Repeat(" ", gap) + usage)
}

func (m Model) renderNotFound(width, height int) string {
	secs := int(m.cfg.NotFoundRedirect().Seconds())
	text := m.theme.NotFound.Render("Chat not found") + "\n" +
		m.theme.MessageMeta.Render(fmt.Sprintf("Returning to the overview in %ds. Press enter to go now.", secs))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// renderStatus shows the newest toast, or the shortcut hints, plus a jump
// hint when the transcript is not following new output.
func (m Model) renderStatus() string {
	var left string
	if toast, ok := m.toasts.Current(); ok {
		left = toast.Render()
	} else {
		left = m.help.ShortHelpView(m.keys.ShortHelp())
	}

	right := ""
	if m.page == pageChat && m.notFoundID == "" && !m.scroll.Pinned() {
		right = m.theme.JumpHint.Render("more below: ctrl+end")
	}

	left = lipgloss.NewStyle().MaxWidth(max(0, m.width-lipgloss.Width(right)-1)).Render(left)
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	line := left + strings.Repeat(" ", gap) + right
	return m.theme.StatusBar.Width(m.width).MaxHeight(statusHeight).Render(line)
}

func (m Model) renderHelp() string {
	body := m.theme.PageTitle.Render("Keyboard shortcuts") + "\n" +
		m.help.FullHelpView(m.keys.FullHelp()) + "\n\n" +
		m.theme.OverlayHint.Render("f1 or esc to close")
	box := m.theme.OverlayBox.Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
