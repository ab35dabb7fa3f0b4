// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/ui/styles"
)

// starterPrompts are shown in a chat that has no messages yet.
var starterPrompts = []string{
	"Summarize the key findings of this research paper in plain language.",
	"Draft an email to my team summarizing this week's progress.",
	"Explain machine learning as if you're teaching a beginner.",
}

// =============================================================================
// VIEWPORT ADAPTER
// =============================================================================

// viewportAdapter exposes a bubbles viewport to the scroll coordinator.
type viewportAdapter struct {
	vp *viewport.Model
}

func (m *Model) viewportAdapter() viewportAdapter {
	return viewportAdapter{vp: &m.viewport}
}

func (a viewportAdapter) Offset() int { return a.vp.YOffset }

func (a viewportAdapter) MaxOffset() int {
	return max(0, a.vp.TotalLineCount()-a.vp.Height)
}

func (a viewportAdapter) SetOffset(n int) { a.vp.SetYOffset(n) }

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript pushes the active session into the viewport and keeps
// it pinned to the newest line unless the user has scrolled away.
func (m *Model) refreshTranscript() {
	content := m.renderTranscript()
	if !m.frames.Changed(content) {
		return
	}
	m.viewport.SetContent(content)

	vp := m.viewportAdapter()
	m.scroll.ContentChanged(vp)
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		m.scroll.SentinelVisible()
	}
}

func (m Model) renderTranscript() string {
	sess, ok := m.activeSession()
	if !ok {
		return ""
	}
	width := max(10, m.viewport.Width)

	var b strings.Builder
	if sess.ShowPrompts {
		b.WriteString(m.renderPrompts(width))
		b.WriteString("\n\n")
	}

	rateable := ""
	if targets := rateableMessages(sess); len(targets) > 0 {
		rateable = targets[len(targets)-1].ID
	}
	for _, msg := range sess.Messages {
		b.WriteString(m.renderMessage(msg, width, msg.ID == rateable))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderPrompts(width int) string {
	t := m.theme
	lines := []string{t.MessageMeta.Render("Try asking:")}
	for _, p := range starterPrompts {
		lines = append(lines, t.Prompt.Width(max(10, width-4)).Render(p))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderMessage(msg model.Message, width int, rateable bool) string {
	t := m.theme
	stamp := t.MessageMeta.Render(msg.Timestamp.Format("15:04"))
	bodyWidth := max(10, width-2)

	if msg.Type == model.TypeUser {
		label := t.UserLabel.Render(msg.Type.DisplayName()) + " " + stamp
		style := t.UserMessage
		if m.cfg.UI.WordWrap {
			style = style.Width(bodyWidth)
		}
		return label + "\n" + style.Render(msg.Content)
	}

	label := t.AssistantLabel.Render(msg.Type.DisplayName()) + " " + stamp
	var body string
	switch {
	case msg.Pending && msg.Content == model.PlaceholderText:
		body = t.PendingMessage.Render(m.spinner.View() + " Thinking...")
	case msg.Pending:
		body = t.AssistantMessage.Render(m.md.Render(msg.Content, false)) + "\n" + m.spinner.View()
	case isFailure(msg.Content):
		body = t.FailedMessage.Render(msg.Content)
	case m.revealing(msg):
		shown := []rune(msg.Content)[:m.revealed[msg.ID]]
		style := t.AssistantMessage
		if m.cfg.UI.WordWrap {
			style = style.Width(bodyWidth)
		}
		body = style.Render(string(shown) + styles.TypingCursor)
	default:
		body = t.AssistantMessage.Render(m.md.Render(msg.Content, true))
	}

	out := label + "\n" + body
	if rateable {
		out += "\n" + t.MessageMeta.Render("ctrl+f rate  ctrl+y copy")
	}
	return out
}

// revealing reports whether msg is part way through its reveal.
func (m Model) revealing(msg model.Message) bool {
	if !msg.IsNew || msg.Pending || m.cfg.RevealInterval() <= 0 {
		return false
	}
	n := len([]rune(msg.Content))
	return m.revealed[msg.ID] < n
}

func isFailure(content string) bool {
	return content == controller.FailureText || content == controller.SummaryFailureText
}
