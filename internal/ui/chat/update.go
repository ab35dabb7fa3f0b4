// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/export"
	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/session"
	"github.com/jeranaias/securechat-tui/internal/ui/components"
	"github.com/jeranaias/securechat-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.frames.Reset()
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.page == pageOverview {
			var cmd tea.Cmd
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
		if m.overlay != nil || m.notFoundID != "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.scroll.UserScrolled(m.viewportAdapter())
		return m, cmd

	case storeChangedMsg:
		return m.handleStoreChanged(msg)

	case frameTickMsg:
		m.frames.Tick()
		m.refreshTranscript()
		return m, nil

	case revealTickMsg:
		return m.handleRevealTick()

	case turnDoneMsg:
		return m.handleTurnDone(msg)

	case uploadDoneMsg:
		return m.handleUploadDone(msg)

	case feedbackDoneMsg:
		return m.handleFeedbackDone(msg)

	case loginDoneMsg:
		if msg.Err != nil {
			logger.Logger.Warn().Err(msg.Err).Msg("LOGIN_FAILED")
			m.toasts.Warning("Login failed: " + msg.Err.Error())
		} else {
			logger.Logger.Info().Str("message", msg.Message).Msg("LOGIN_OK")
		}
		return m, nil

	case exportDoneMsg:
		if msg.Err != nil {
			m.toasts.Error("Export failed: " + msg.Err.Error())
		} else {
			m.toasts.Success("Saved " + msg.Path)
		}
		return m, nil

	case redirectMsg:
		if m.notFoundID == msg.SessionID {
			logTransition("not_found", "overview")
			m.goOverview()
		}
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Sweep()
		return m, components.ToastTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if sess, ok := m.activeSession(); ok && m.page == pageChat && sess.HasPending() {
			m.refreshTranscript()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.overlay != nil {
		return m.handleOverlayKey(msg)
	}

	if m.notFoundID != "" {
		if key.Matches(msg, m.keys.Cancel, m.keys.Open) {
			m.goOverview()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.openChat(m.deps.Store.Create())
		m.focusComposer()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.collapsed = !m.collapsed
		if m.collapsed {
			m.focusComposer()
		}
		m.relayout()
		return m, nil

	case key.Matches(msg, m.keys.Overview):
		if m.page == pageChat {
			logTransition("chat", "overview")
			m.goOverview()
		} else {
			logTransition("overview", "chat")
			m.openChat(m.deps.Store.Ensure())
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusSidebar):
		if m.focus == focusSidebar {
			m.focusComposer()
		} else {
			if m.collapsed {
				m.collapsed = false
				m.relayout()
			}
			m.focus = focusSidebar
			m.composer.Blur()
			m.syncCursor()
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	if m.page == pageOverview {
		return m.handleOverviewKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *Model) focusComposer() {
	m.focus = focusComposer
	m.composer.Focus()
}

// relayout re-applies the current size after the sidebar width changed.
func (m *Model) relayout() {
	m.resize(m.width, m.height)
	m.frames.Reset()
	m.refreshTranscript()
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.deps.Store.Sessions()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(sessions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(sessions) {
			m.openChat(sessions[m.cursor].ID)
			m.focusComposer()
		}
	case key.Matches(msg, m.keys.Rename):
		if m.cursor < len(sessions) {
			m.overlay = newRenameOverlay(sessions[m.cursor])
		}
	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(sessions) {
			m.overlay = newDeleteOverlay(sessions[m.cursor])
		}
	case key.Matches(msg, m.keys.Cancel):
		m.focusComposer()
	}
	return m, nil
}

func (m Model) handleOverviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Open) {
		logTransition("overview", "chat")
		m.openChat(m.deps.Store.Ensure())
		return m, nil
	}
	var cmd tea.Cmd
	m.overview, cmd = m.overview.Update(msg)
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := m.viewportAdapter()

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		m.scroll.UserScrolled(vp)
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		m.scroll.UserScrolled(vp)
		return m, nil
	case key.Matches(msg, m.keys.LineUp):
		m.viewport.LineUp(1)
		m.scroll.UserScrolled(vp)
		return m, nil
	case key.Matches(msg, m.keys.LineDown):
		m.viewport.LineDown(1)
		m.scroll.UserScrolled(vp)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		m.scroll.UserScrolled(vp)
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.scroll.JumpToBottom(vp)
		return m, nil

	case key.Matches(msg, m.keys.Rename):
		if sess, ok := m.activeSession(); ok {
			m.overlay = newRenameOverlay(sess)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if sess, ok := m.activeSession(); ok {
			m.overlay = newDeleteOverlay(sess)
		}
		return m, nil
	case key.Matches(msg, m.keys.Upload):
		if m.activeID != "" {
			m.overlay = newUploadOverlay(m.activeID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Feedback):
		sess, ok := m.activeSession()
		if !ok {
			return m, nil
		}
		targets := rateableMessages(sess)
		if len(targets) == 0 {
			m.toasts.Status("No answer to rate yet")
			return m, nil
		}
		m.overlay = newFeedbackOverlay(sess.ID, targets)
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m.copyLastAnswer()
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// submit sends the composer text as a new chat turn. The text is kept when
// another reply is still in progress.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		return m, nil
	}
	if m.deps.Guard != nil && m.deps.Guard.Busy() {
		m.toasts.Warning("Wait for the current response to finish")
		return m, nil
	}
	if m.activeID == "" || !m.deps.Store.Exists(m.activeID) {
		m.openChat(m.deps.Store.Ensure())
	}

	m.composer.Reset()
	// A new turn always follows its reply.
	m.scroll.Reset()
	return m, m.submitCmd(m.activeID, text)
}

func (m Model) exportCmd() tea.Cmd {
	sess, ok := m.activeSession()
	if !ok {
		return nil
	}
	opts := export.DefaultOptions()
	opts.OutputDir = m.cfg.UI.ExportDir
	exp, err := export.ForFormat(m.cfg.UI.ExportFormat, opts)
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{Err: err} }
	}
	return func() tea.Msg {
		path, err := export.ExportToFile(&sess, exp, opts)
		return exportDoneMsg{Path: path, Err: err}
	}
}

// =============================================================================
// STORE CHANGES
// =============================================================================

func (m Model) handleStoreChanged(msg storeChangedMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenForChanges(m.changes)}

	for _, c := range msg.Changes {
		if c.Kind == session.ChangeDeleted && m.overlay != nil && m.overlay.sessionID == c.SessionID {
			m.overlay = nil
			m.composer.Focus()
		}
	}
	m.clampCursor()

	if m.page == pageChat && m.activeID != "" && !m.deps.Store.Exists(m.activeID) {
		if m.notFoundID != m.activeID {
			logger.Logger.Info().Str("chat_id", m.activeID).Msg("SESSION_NOT_FOUND")
			m.notFoundID = m.activeID
			cmds = append(cmds, m.redirectCmd(m.activeID))
		}
		return m, tea.Batch(cmds...)
	}

	m.trackPending()
	cmds = append(cmds, m.requestRedraw(), m.scheduleReveal())
	return m, tea.Batch(cmds...)
}

// requestRedraw rebuilds the transcript now or schedules a deferred frame.
func (m *Model) requestRedraw() tea.Cmd {
	if m.page != pageChat {
		return nil
	}
	ok, cmd := m.frames.Request()
	if ok {
		m.refreshTranscript()
	}
	return cmd
}

// =============================================================================
// REVEAL
// =============================================================================

// trackPending keeps streamed text fully shown while it is still arriving, so
// the reveal only covers text that has not been seen yet.
func (m *Model) trackPending() {
	sess, ok := m.activeSession()
	if !ok {
		return
	}
	for _, msg := range sess.Messages {
		if msg.Pending && msg.Content != model.PlaceholderText {
			m.revealed[msg.ID] = utf8.RuneCountInString(msg.Content)
		}
	}
}

func (m Model) unrevealed() bool {
	sess, ok := m.activeSession()
	if !ok || m.page != pageChat {
		return false
	}
	for _, msg := range sess.Messages {
		if msg.IsNew && !msg.Pending {
			return true
		}
	}
	return false
}

func (m *Model) scheduleReveal() tea.Cmd {
	if m.revealScheduled || !m.unrevealed() {
		return nil
	}
	m.revealScheduled = true
	interval := m.cfg.RevealInterval()
	if interval <= 0 {
		return func() tea.Msg { return revealTickMsg{Time: time.Now()} }
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return revealTickMsg{Time: t}
	})
}

func (m Model) handleRevealTick() (tea.Model, tea.Cmd) {
	m.revealScheduled = false
	sess, ok := m.activeSession()
	if !ok || m.page != pageChat {
		return m, nil
	}

	instant := m.cfg.RevealInterval() <= 0
	var done []string
	for _, msg := range sess.Messages {
		if !msg.IsNew || msg.Pending {
			continue
		}
		if msg.Type == model.TypeUser || instant {
			done = append(done, msg.ID)
			continue
		}
		total := utf8.RuneCountInString(msg.Content)
		next := styles.RevealStep(total, m.revealed[msg.ID])
		if next >= total {
			done = append(done, msg.ID)
		} else {
			m.revealed[msg.ID] = next
		}
	}

	for _, id := range done {
		delete(m.revealed, id)
		m.deps.Store.MarkRevealed(sess.ID, id)
	}
	m.refreshTranscript()
	return m, m.scheduleReveal()
}

// =============================================================================
// TURN RESULTS
// =============================================================================

func (m Model) handleTurnDone(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err == nil:
		if msg.Turn.Err != nil {
			m.toasts.Error("Unable to fetch response")
		}
	case errors.Is(msg.Err, controller.ErrTurnInFlight):
		m.toasts.Warning("Wait for the current response to finish")
	case errors.Is(msg.Err, controller.ErrSessionNotFound):
		m.toasts.Warning("That chat no longer exists")
	case errors.Is(msg.Err, controller.ErrEmptyMessage):
	default:
		m.toasts.Error(msg.Err.Error())
	}
	return m, nil
}

func (m Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err != nil && errors.Is(msg.Err, controller.ErrTurnInFlight):
		m.toasts.Warning("Wait for the current response to finish")
	case msg.Err != nil:
		m.toasts.Error(msg.Err.Error())
	case errors.Is(msg.Turn.Err, controller.ErrUnsupportedFile):
		m.toasts.Warning("Unsupported file type")
	case msg.Turn.Err != nil:
		m.toasts.Error("Unable to summarize " + msg.Name)
	default:
		m.toasts.Success("Summarized " + msg.Name)
	}
	return m, nil
}

func (m Model) handleFeedbackDone(msg feedbackDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if m.overlay != nil && m.overlay.kind == overlayFeedback {
			m.overlay.sending = false
			m.overlay.hint = fmt.Sprintf("Failed to submit feedback: %v", msg.Err)
		}
		return m, nil
	}
	if m.overlay != nil && m.overlay.kind == overlayFeedback {
		m = m.closeOverlay()
	}
	status := msg.Status
	if status == "" {
		status = "Feedback submitted"
	}
	m.toasts.Success(status)
	return m, nil
}
