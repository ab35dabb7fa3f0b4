// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/ui/components"
	"github.com/jeranaias/securechat-tui/internal/util"
)

// =============================================================================
// OVERLAY STATE
// =============================================================================

type overlayKind int

const (
	overlayRename overlayKind = iota
	overlayDelete
	overlayUpload
	overlayFeedback
)

// overlay is a modal dialog drawn over the transcript.
type overlay struct {
	kind      overlayKind
	sessionID string
	name      string

	// feedback
	targets   []model.Message
	target    int
	messageID string
	preview   string
	rating    int
	onComment bool
	sending   bool

	hint  string
	input textinput.Model
}

const overlayWidth = 56

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = overlayWidth - 6
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return in
}

func newRenameOverlay(sess model.ChatSession) *overlay {
	return &overlay{
		kind:      overlayRename,
		sessionID: sess.ID,
		name:      sess.Name,
		input:     newInput("Chat name", sess.Name, 80),
	}
}

func newDeleteOverlay(sess model.ChatSession) *overlay {
	return &overlay{kind: overlayDelete, sessionID: sess.ID, name: sess.Name}
}

func newUploadOverlay(sessionID string) *overlay {
	return &overlay{
		kind:      overlayUpload,
		sessionID: sessionID,
		input:     newInput("~/Documents/report.pdf", "", 4096),
	}
}

// newFeedbackOverlay opens on the newest of targets, which must not be empty.
func newFeedbackOverlay(sessionID string, targets []model.Message) *overlay {
	in := newInput("Optional comment", "", 1000)
	in.Blur()
	o := &overlay{
		kind:      overlayFeedback,
		sessionID: sessionID,
		targets:   targets,
		input:     in,
	}
	o.selectTarget(len(targets) - 1)
	return o
}

// selectTarget points the feedback overlay at targets[i], clamped.
func (o *overlay) selectTarget(i int) {
	i = max(0, min(i, len(o.targets)-1))
	o.target = i
	o.messageID = o.targets[i].MessageID
	o.preview = util.SingleLine(o.targets[i].Preview(60))
}

// rateableMessages returns the replies that can be rated, oldest first.
func rateableMessages(sess model.ChatSession) []model.Message {
	var out []model.Message
	for _, msg := range sess.Messages {
		if msg.CanReceiveFeedback() {
			out = append(out, msg)
		}
	}
	return out
}

// =============================================================================
// OVERLAY KEYS
// =============================================================================

func (m Model) closeOverlay() Model {
	m.overlay = nil
	m.composer.Focus()
	return m
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.overlay
	if key.Matches(msg, m.keys.Cancel) && !o.sending {
		return m.closeOverlay(), nil
	}

	switch o.kind {
	case overlayDelete:
		switch msg.String() {
		case "y", "Y", "enter":
			if m.deps.Store.Delete(o.sessionID) {
				m.toasts.Status(fmt.Sprintf("Deleted %q", o.name))
			}
			return m.closeOverlay(), nil
		case "n", "N":
			return m.closeOverlay(), nil
		}
		return m, nil

	case overlayRename:
		if msg.Type == tea.KeyEnter {
			name := strings.TrimSpace(o.input.Value())
			if !m.deps.Store.Rename(o.sessionID, name) {
				o.hint = "Name cannot be empty"
				return m, nil
			}
			logger.Logger.Debug().Str("chat_id", o.sessionID).Str("name", name).Msg("SESSION_RENAMED")
			return m.closeOverlay(), nil
		}

	case overlayUpload:
		if msg.Type == tea.KeyEnter {
			path := strings.TrimSpace(o.input.Value())
			if path == "" {
				o.hint = "Enter a file path"
				return m, nil
			}
			if m.deps.Guard != nil && m.deps.Guard.Busy() {
				o.hint = "Wait for the current response to finish"
				return m, nil
			}
			id := o.sessionID
			m = m.closeOverlay()
			m.scroll.Reset()
			return m, m.uploadCmd(id, path)
		}

	case overlayFeedback:
		return m.handleFeedbackKey(msg)
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return m, cmd
}

func (m Model) handleFeedbackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.overlay
	if o.sending {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		if o.rating < controller.MinRating {
			o.hint = "Choose a rating from 1 to 5"
			return m, nil
		}
		o.sending = true
		o.hint = "Sending..."
		return m, m.feedbackCmd(o.messageID, o.rating, o.input.Value())
	case tea.KeyTab, tea.KeyShiftTab:
		o.onComment = !o.onComment
		if o.onComment {
			o.input.Focus()
		} else {
			o.input.Blur()
		}
		return m, nil
	}

	if !o.onComment {
		switch s := msg.String(); s {
		case "left", "h":
			o.rating = max(controller.MinRating, o.rating-1)
		case "right", "l":
			o.rating = min(controller.MaxRating, o.rating+1)
		case "up", "k":
			o.selectTarget(o.target - 1)
		case "down", "j":
			o.selectTarget(o.target + 1)
		default:
			if n, err := strconv.Atoi(s); err == nil && n >= controller.MinRating && n <= controller.MaxRating {
				o.rating = n
			}
		}
		o.hint = ""
		return m, nil
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return m, cmd
}

// =============================================================================
// OVERLAY COMMANDS
// =============================================================================

func (m Model) uploadCmd(sessionID, path string) tea.Cmd {
	uc, ctx := m.deps.Upload, m.ctx
	return func() tea.Msg {
		turn, err := uc.Submit(ctx, sessionID, path, controller.FileOpener(util.ExpandHome(path)))
		return uploadDoneMsg{Name: path, Turn: turn, Err: err}
	}
}

func (m Model) feedbackCmd(messageID string, rating int, comment string) tea.Cmd {
	fc, ctx := m.deps.Feedback, m.ctx
	return func() tea.Msg {
		status, err := fc.Submit(ctx, messageID, rating, comment)
		return feedbackDoneMsg{Status: status, Err: err}
	}
}

// =============================================================================
// OVERLAY RENDERING
// =============================================================================

func (m Model) renderOverlay() string {
	o := m.overlay
	t := m.theme
	var b strings.Builder

	switch o.kind {
	case overlayRename:
		b.WriteString(t.OverlayTitle.Render("Rename chat"))
		b.WriteString("\n\n")
		b.WriteString(o.input.View())
		b.WriteString("\n\n")
		b.WriteString(t.OverlayHint.Render("enter save  esc cancel"))

	case overlayDelete:
		b.WriteString(t.ErrorStyle.Render("Delete chat"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Delete %q? This cannot be undone.", util.TruncateRunes(o.name, 30)))
		b.WriteString("\n\n")
		b.WriteString(t.OverlayHint.Render("y delete  n cancel"))

	case overlayUpload:
		b.WriteString(t.OverlayTitle.Render("Summarize a document"))
		b.WriteString("\n")
		b.WriteString(t.OverlayHint.Render("." + strings.Join(controller.AllowedExtensions, " .")))
		b.WriteString("\n\n")
		b.WriteString(o.input.View())
		b.WriteString("\n\n")
		b.WriteString(t.OverlayHint.Render("enter upload  esc cancel"))

	case overlayFeedback:
		title := "Rate this answer"
		if n := len(o.targets); n > 1 {
			title = fmt.Sprintf("Rate answer %d of %d", o.target+1, n)
		}
		b.WriteString(t.OverlayTitle.Render(title))
		b.WriteString("\n")
		b.WriteString(t.OverlayHint.Render(o.preview))
		b.WriteString("\n\n")
		stars := components.RenderStars(t, o.rating, controller.MaxRating)
		if !o.onComment {
			stars = "> " + stars
		} else {
			stars = "  " + stars
		}
		b.WriteString(stars)
		b.WriteString("\n\n")
		b.WriteString(o.input.View())
		b.WriteString("\n\n")
		b.WriteString(t.OverlayHint.Render("1-5 rate  up/down answer  tab comment  enter send  esc cancel"))
	}

	if o.hint != "" {
		b.WriteString("\n")
		b.WriteString(t.WarningStyle.Render(o.hint))
	}
	box := t.OverlayBox
	if o.kind == overlayDelete {
		box = t.OverlayDanger
	}
	return box.Width(overlayWidth).Render(b.String())
}

// placeOverlay centers the dialog in a box of the given size.
func (m Model) placeOverlay(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderOverlay())
}
