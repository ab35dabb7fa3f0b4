// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/session"
)

// =============================================================================
// STORE MESSAGES
// =============================================================================

// storeChangedMsg carries every change committed since the last one was read.
type storeChangedMsg struct {
	Changes []session.Change
}

// =============================================================================
// TURN MESSAGES
// =============================================================================

// turnDoneMsg reports the end of a chat turn.
type turnDoneMsg struct {
	Turn controller.Turn
	Err  error
}

// uploadDoneMsg reports the end of an upload summary turn.
type uploadDoneMsg struct {
	Name string
	Turn controller.Turn
	Err  error
}

// feedbackDoneMsg reports the backend's answer to a rating.
type feedbackDoneMsg struct {
	Status string
	Err    error
}

// loginDoneMsg reports the startup login call.
type loginDoneMsg struct {
	Message string
	Err     error
}

// exportDoneMsg reports a transcript export.
type exportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// TIMERS
// =============================================================================

// revealTickMsg advances the reveal of new messages.
type revealTickMsg struct{ Time time.Time }

// frameTickMsg flushes a transcript redraw deferred by the frame limiter.
type frameTickMsg struct{ Time time.Time }

// redirectMsg returns to the overview after a session-not-found notice.
type redirectMsg struct{ SessionID string }
