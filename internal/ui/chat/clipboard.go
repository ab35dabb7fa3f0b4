// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
)

// =============================================================================
// CLIPBOARD
// =============================================================================

// copyToClipboard copies text to the system clipboard.
func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// latestSettledAnswer returns the newest assistant reply that has finished
// and is not a failure notice.
func latestSettledAnswer(sess model.ChatSession) (model.Message, bool) {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		msg := sess.Messages[i]
		if msg.Type != model.TypeAssistant || msg.Pending {
			continue
		}
		if msg.Content == "" || isFailure(msg.Content) {
			continue
		}
		return msg, true
	}
	return model.Message{}, false
}

// copyLastAnswer copies the latest settled answer of the active chat.
func (m Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	sess, ok := m.activeSession()
	if !ok {
		return m, nil
	}
	msg, ok := latestSettledAnswer(sess)
	if !ok {
		m.toasts.Status("No answer to copy yet")
		return m, nil
	}

	write := m.deps.Clipboard
	if write == nil {
		write = copyToClipboard
	}
	if err := write(msg.Content); err != nil {
		logger.Logger.Warn().Err(err).Str("chat_id", sess.ID).Msg("CLIPBOARD_FAILED")
		m.toasts.Error("Copy failed: " + err.Error())
		return m, nil
	}

	n := len([]rune(msg.Content))
	size := fmt.Sprintf("%d chars", n)
	if n >= 1000 {
		size = fmt.Sprintf("%.1fK chars", float64(n)/1000)
	}
	m.toasts.Success("Copied (" + size + ")")
	return m, nil
}
